package generic

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// DATE NORMALIZER - Heterogeneous published dates to CalendarDate
// =============================================================================
//
// Published datasets mix ISO dates, day-first dates, month-only periods and
// Spanish month names. ParseDate tries a fixed list of steps and the first one
// that matches wins, so the same text always yields the same date.
// Month-only inputs map to day 1 of the month.

type dateStep func(s string) (CalendarDate, bool)

var dateSteps = []dateStep{
	layoutStep("2006-1-2"),
	layoutStep("2/1/2006"),
	layoutStep("2-1-2006"),
	layoutStep("1/2006"),
	layoutStep("2006/1/2"),
	layoutStep("2006-1"),
	layoutStep("2006-1-2 15:04:05"),
	layoutStep("2/1/2006 15:04:05"),
	monthNameYear, // long and abbreviated names
	layoutStep("2006/1"),
	layoutStep("1-2006"),
	numericPair,
	dayFirst,
}

// ParseDate normalises raw into a CalendarDate. It returns a *ParseError
// wrapping ErrParseFailure when no step matches.
func ParseDate(raw string) (CalendarDate, error) {
	s := strings.TrimSpace(raw)
	if s != "" {
		for _, step := range dateSteps {
			if d, ok := step(s); ok {
				return d, nil
			}
		}
	}
	return CalendarDate{}, &ParseError{Kind: "date", Input: raw}
}

// MustParseDate panics on failure. Intended for constants and tests.
func MustParseDate(raw string) CalendarDate {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func layoutStep(layout string) dateStep {
	return func(s string) (CalendarDate, bool) {
		t, err := time.Parse(layout, s)
		if err != nil {
			return CalendarDate{}, false
		}
		return DateOf(t), true
	}
}

// =============================================================================
// MONTH NAMES
// =============================================================================

var monthNames = map[string]time.Month{
	"enero": time.January, "ene": time.January, "january": time.January, "jan": time.January,
	"febrero": time.February, "feb": time.February, "february": time.February,
	"marzo": time.March, "mar": time.March, "march": time.March,
	"abril": time.April, "abr": time.April, "april": time.April, "apr": time.April,
	"mayo": time.May, "may": time.May,
	"junio": time.June, "jun": time.June, "june": time.June,
	"julio": time.July, "jul": time.July, "july": time.July,
	"agosto": time.August, "ago": time.August, "august": time.August, "aug": time.August,
	"septiembre": time.September, "setiembre": time.September, "sep": time.September,
	"sept": time.September, "set": time.September, "september": time.September,
	"octubre": time.October, "oct": time.October, "october": time.October,
	"noviembre": time.November, "nov": time.November, "november": time.November,
	"diciembre": time.December, "dic": time.December, "december": time.December, "dec": time.December,
}

// MonthFromName resolves a Spanish or English month name, abbreviated or
// not, ignoring case, accents and a trailing dot.
func MonthFromName(name string) (time.Month, bool) {
	key := strings.TrimSuffix(FoldText(name), ".")
	m, ok := monthNames[key]
	return m, ok
}

// FoldText lowercases s, trims it and strips diacritics ("Año" -> "ano").
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

var monthNameYearRe = regexp.MustCompile(`^([a-z]+)\.?[\s\-/]+(?:de\s+)?(\d{4})$`)

func monthNameYear(s string) (CalendarDate, bool) {
	m := monthNameYearRe.FindStringSubmatch(FoldText(s))
	if m == nil {
		return CalendarDate{}, false
	}
	month, ok := MonthFromName(m[1])
	if !ok {
		return CalendarDate{}, false
	}
	year, _ := strconv.Atoi(m[2])
	return StartOfMonth(year, month), true
}

// =============================================================================
// FALLBACKS
// =============================================================================

var (
	yearMonthRe = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})$`)
	monthYearRe = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
)

// numericPair accepts YYYY-MM or MM-YYYY with a plausible year.
func numericPair(s string) (CalendarDate, bool) {
	var year, month int
	if m := yearMonthRe.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
	} else if m := monthYearRe.FindStringSubmatch(s); m != nil {
		month, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[2])
	} else {
		return CalendarDate{}, false
	}
	if year < 1900 || year > 2100 || month < 1 || month > 12 {
		return CalendarDate{}, false
	}
	return StartOfMonth(year, time.Month(month)), true
}

var (
	trailingTimeRe = regexp.MustCompile(`[ t]\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?.*$`)
	compactDateRe  = regexp.MustCompile(`^\d{8}$`)
	tokenSplitRe   = regexp.MustCompile(`[^0-9a-z]+`)
)

// dayFirst is the permissive last resort: three groups read day-first unless
// the first group has four digits, compact YYYYMMDD, or a month name with a
// day and a year in any order.
func dayFirst(s string) (CalendarDate, bool) {
	s = trailingTimeRe.ReplaceAllString(FoldText(s), "")

	if compactDateRe.MatchString(s) {
		y, _ := strconv.Atoi(s[:4])
		m, _ := strconv.Atoi(s[4:6])
		d, _ := strconv.Atoi(s[6:])
		return buildDate(y, m, d)
	}

	var tokens []string
	for _, tok := range tokenSplitRe.Split(s, -1) {
		if tok != "" && tok != "de" && tok != "del" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) != 3 {
		return CalendarDate{}, false
	}

	var nums []string
	month := 0
	for _, tok := range tokens {
		if isDigits(tok) {
			nums = append(nums, tok)
			continue
		}
		mo, ok := MonthFromName(tok)
		if !ok || month != 0 {
			return CalendarDate{}, false
		}
		month = int(mo)
	}

	switch {
	case month == 0 && len(nums) == 3:
		if len(nums[0]) == 4 {
			return buildDate(atoi(nums[0]), atoi(nums[1]), atoi(nums[2]))
		}
		return buildDate(expandYear(nums[2]), atoi(nums[1]), atoi(nums[0]))
	case month != 0 && len(nums) == 2:
		if len(nums[0]) == 4 {
			return buildDate(atoi(nums[0]), month, atoi(nums[1]))
		}
		return buildDate(expandYear(nums[1]), month, atoi(nums[0]))
	}
	return CalendarDate{}, false
}

// expandYear maps two-digit years: 00-68 -> 2000s, 69-99 -> 1900s.
func expandYear(tok string) int {
	y := atoi(tok)
	if len(tok) <= 2 {
		if y <= 68 {
			return 2000 + y
		}
		return 1900 + y
	}
	return y
}

func buildDate(y, m, d int) (CalendarDate, bool) {
	if y < 1 || y > 9999 || m < 1 || m > 12 || d < 1 {
		return CalendarDate{}, false
	}
	date := NewDate(y, time.Month(m), d)
	if date.Year() != y || int(date.Month()) != m || date.Day() != d {
		return CalendarDate{}, false
	}
	return date, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
