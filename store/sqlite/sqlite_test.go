package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/store/sqlite"
	"github.com/laborcalc/indemnity-engine/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) generic.Store {
		s, err := sqlite.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indemnity.db")

	s, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordCalculation(context.Background(), generic.CalculationRecord{
		ID: "x", Kind: generic.KindInjury, Input: []byte(`{}`), Result: []byte(`{}`),
	}))
	require.NoError(t, s.Close())

	// migrations already applied: reopening is a no-op upgrade
	s, err = sqlite.New(path)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.GetCalculation(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, generic.KindInjury, rec.Kind)
}
