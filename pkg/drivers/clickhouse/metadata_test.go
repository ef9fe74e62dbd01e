package clickhouse

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

const metadataCatalogs = `{
	"meta": [{"name": "name", "type": "String"}, {"name": "is_current", "type": "UInt8"}],
	"data": [
		{"name": "default", "is_current": 0},
		{"name": "sales", "is_current": 1},
		{"name": "system", "is_current": 0}
	],
	"rows": 3
}`

const metadataTables = `{
	"meta": [
		{"name": "name", "type": "String"},
		{"name": "engine", "type": "String"},
		{"name": "primary_key", "type": "String"}
	],
	"data": [
		{"name": "daily_revenue", "engine": "MaterializedView", "primary_key": ""},
		{"name": "events", "engine": "MergeTree", "primary_key": "site_id, event_date"},
		{"name": "tags", "engine": "Memory", "primary_key": ""}
	],
	"rows": 3
}`

const metadataColumns = `{
	"meta": [
		{"name": "table", "type": "String"},
		{"name": "name", "type": "String"},
		{"name": "type", "type": "String"},
		{"name": "default_expression", "type": "String"}
	],
	"data": [
		{"table": "daily_revenue", "name": "day", "type": "Date", "default_expression": ""},
		{"table": "daily_revenue", "name": "revenue", "type": "Float64", "default_expression": ""},
		{"table": "events", "name": "site_id", "type": "UInt32", "default_expression": ""},
		{"table": "events", "name": "event_date", "type": "Date", "default_expression": "today()"},
		{"table": "events", "name": "payload", "type": "Nullable(String)", "default_expression": ""},
		{"table": "tags", "name": "tag", "type": "String", "default_expression": ""}
	],
	"rows": 6
}`

const metadataIndexes = `{
	"meta": [
		{"name": "table", "type": "String"},
		{"name": "name", "type": "String"},
		{"name": "expr", "type": "String"}
	],
	"data": [{"table": "events", "name": "idx_payload", "expr": "payload"}],
	"rows": 1
}`

// metadataHandler routes each reflection statement to a canned response.
func metadataHandler(t *testing.T, catalogs string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		sql := string(body)
		switch {
		case strings.Contains(sql, "system.databases"):
			_, _ = w.Write([]byte(catalogs))
		case strings.Contains(sql, "system.data_skipping_indices"):
			_, _ = w.Write([]byte(metadataIndexes))
		case strings.Contains(sql, "system.tables"):
			_, _ = w.Write([]byte(metadataTables))
		case strings.Contains(sql, "system.columns"):
			_, _ = w.Write([]byte(metadataColumns))
		default:
			t.Errorf("unexpected statement: %s", sql)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func TestConnectionMetadata(t *testing.T) {
	conn := newTestConnection(t, metadataHandler(t, metadataCatalogs))

	metadata, err := conn.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, driver.DialectGeneric, metadata.Dialect())
	assert.Len(t, metadata.Catalogs(), 3)

	catalog, ok := metadata.CurrentCatalog()
	require.True(t, ok)
	assert.Equal(t, "sales", catalog.Name())

	schema, ok := catalog.CurrentSchema()
	require.True(t, ok)
	assert.Equal(t, "default", schema.Name())
	assert.Len(t, schema.Tables(), 2)

	events, ok := schema.Table("events")
	require.True(t, ok)
	assert.Len(t, events.Columns(), 3)

	payload, ok := events.Column("payload")
	require.True(t, ok)
	assert.Equal(t, "Nullable(String)", payload.DataType)
	assert.False(t, payload.NotNull)

	eventDate, ok := events.Column("event_date")
	require.True(t, ok)
	assert.True(t, eventDate.NotNull)
	assert.Equal(t, "today()", eventDate.Default)

	// The sorting key columns double as the primary index.
	pk, ok := events.PrimaryKey()
	require.True(t, ok)
	assert.Equal(t, []string{"site_id", "event_date"}, pk.Columns)

	primary, ok := events.Index("PRIMARY")
	require.True(t, ok)
	assert.True(t, primary.Unique)
	assert.Equal(t, []string{"site_id", "event_date"}, primary.Columns)

	skipping, ok := events.Index("idx_payload")
	require.True(t, ok)
	assert.False(t, skipping.Unique)
	assert.Equal(t, []string{"payload"}, skipping.Columns)

	// Memory engine tables carry no sorting key.
	tags, ok := schema.Table("tags")
	require.True(t, ok)
	_, ok = tags.PrimaryKey()
	assert.False(t, ok)

	require.Len(t, schema.Views(), 1)
	view, ok := schema.View("daily_revenue")
	require.True(t, ok)
	assert.Len(t, view.Columns(), 2)
}

func TestConnectionMetadataNoCurrentCatalog(t *testing.T) {
	const catalogs = `{
		"meta": [{"name": "name", "type": "String"}, {"name": "is_current", "type": "UInt8"}],
		"data": [{"name": "default", "is_current": 0}],
		"rows": 1
	}`
	conn := newTestConnection(t, metadataHandler(t, catalogs))

	metadata, err := conn.Metadata(context.Background())
	require.NoError(t, err)
	assert.Len(t, metadata.Catalogs(), 1)
	_, ok := metadata.CurrentCatalog()
	assert.False(t, ok)
}

func TestConnectionMetadataQueryError(t *testing.T) {
	conn := newTestConnection(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Code: 497. DB::Exception: Not enough privileges. (ACCESS_DENIED)"))
	}))

	_, err := conn.Metadata(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, driver.ErrIO)
}
