package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := buildDialector("oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")

	for _, d := range []string{"sqlite", "postgres", "mysql", "sqlserver"} {
		_, err := buildDialector(d, "dsn")
		assert.NoError(t, err, d)
	}
}

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQL("sqlite", filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	assert.NoError(t, CloseSQL(db))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(errors.New("E11000 duplicate key error collection: shop.users")))
	assert.False(t, IsDuplicateKey(errors.New("timeout")))
}
