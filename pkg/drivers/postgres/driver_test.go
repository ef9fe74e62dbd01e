package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

func TestDriverRegistration(t *testing.T) {
	for _, identifier := range []string{"postgres", "postgresql"} {
		d, ok := driver.Get(identifier)
		require.True(t, ok)
		require.Equal(t, identifier, d.Identifier())
		require.False(t, d.SupportsFileType(driver.FileTypeCSV))
		require.False(t, d.SupportsFileType(driver.FileTypeSQLite))
	}
}

func TestConnectInvalidURL(t *testing.T) {
	d := NewDriver("postgres")
	_, err := d.Connect(context.Background(), "postgres://user@host:bad/db")
	require.ErrorIs(t, err, driver.ErrInvalidURL)
}

func TestConnectionDialect(t *testing.T) {
	c := &Connection{dialect: driver.DialectPostgres}
	require.Equal(t, driver.DialectPostgres, c.Dialect())
}

func TestMatchStatement(t *testing.T) {
	c := &Connection{}
	tests := []struct {
		sql  string
		want driver.StatementKind
	}{
		{"SELECT 1", driver.StatementQuery},
		{"WITH t AS (SELECT 1) SELECT * FROM t", driver.StatementQuery},
		{"INSERT INTO person VALUES (1, 'foo')", driver.StatementDML},
		{"CREATE EXTENSION pgcrypto", driver.StatementDDL},
		{"CREATE FUNCTION add(a int, b int) RETURNS int AS $$ SELECT a + b $$ LANGUAGE SQL", driver.StatementDDL},
		{"VACUUM person", driver.StatementUnknown},
		{"LISTEN channel", driver.StatementUnknown},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, c.MatchStatement(tt.sql), tt.sql)
	}
}
