package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/store/postgres"
	"github.com/laborcalc/indemnity-engine/store/storetest"
)

func TestStore(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) generic.Store {
		s, err := postgres.New(context.Background(), dsn)
		require.NoError(t, err)
		_, err = s.DB().Exec("TRUNCATE wage_index, price_index, lending_rates, floors, calculations")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestNew_RequiresDSN(t *testing.T) {
	_, err := postgres.New(context.Background(), "")
	require.Error(t, err)
}
