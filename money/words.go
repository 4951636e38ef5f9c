package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	units = [...]string{"", "UN", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}
	teens = [...]string{"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE",
		"DIECISÉIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE"}
	twenties = [...]string{"VEINTE", "VEINTIUN", "VEINTIDÓS", "VEINTITRÉS", "VEINTICUATRO",
		"VEINTICINCO", "VEINTISÉIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE"}
	tens = [...]string{"", "", "", "TREINTA", "CUARENTA", "CINCUENTA",
		"SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}
	hundreds = [...]string{"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS",
		"QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS"}
)

// AmountInWords spells out a peso amount the way it appears in a
// liquidation: "PESOS MIL DOSCIENTOS CON 50/100".
func AmountInWords(x decimal.Decimal) string {
	x = Round2(x)
	sign := ""
	if x.IsNegative() {
		sign = "MENOS "
		x = x.Abs()
	}

	whole := x.Truncate(0)
	cents := x.Sub(whole).Mul(hundred).IntPart()

	text := "CERO"
	if n := whole.IntPart(); n > 0 {
		text = spell(n)
	}
	return fmt.Sprintf("PESOS %s%s CON %02d/100", sign, text, cents)
}

func spell(n int64) string {
	var parts []string

	if millions := n / 1_000_000; millions > 0 {
		if millions == 1 {
			parts = append(parts, "UN MILLÓN")
		} else {
			parts = append(parts, spellThousands(millions)+" MILLONES")
		}
	}
	if rest := n % 1_000_000; rest > 0 {
		parts = append(parts, spellThousands(rest))
	}
	return strings.Join(parts, " ")
}

// spellThousands handles 1..999999.
func spellThousands(n int64) string {
	var parts []string
	if th := n / 1000; th > 0 {
		if th == 1 {
			parts = append(parts, "MIL")
		} else {
			parts = append(parts, spellGroup(th)+" MIL")
		}
	}
	if rest := n % 1000; rest > 0 {
		parts = append(parts, spellGroup(rest))
	}
	return strings.Join(parts, " ")
}

// spellGroup handles 1..999.
func spellGroup(n int64) string {
	if n == 100 {
		return "CIEN"
	}

	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundreds[h])
	}

	switch r := n % 100; {
	case r == 0:
	case r < 10:
		parts = append(parts, units[r])
	case r < 20:
		parts = append(parts, teens[r-10])
	case r < 30:
		parts = append(parts, twenties[r-20])
	default:
		t, u := r/10, r%10
		if u == 0 {
			parts = append(parts, tens[t])
		} else {
			parts = append(parts, tens[t]+" Y "+units[u])
		}
	}
	return strings.Join(parts, " ")
}
