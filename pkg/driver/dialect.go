package driver

import "strconv"

// Dialect names the SQL flavor a connection speaks. It steers placeholder
// syntax and identifier quoting in reflection queries.
type Dialect string

const (
	DialectGeneric   Dialect = "generic"
	DialectPostgres  Dialect = "postgresql"
	DialectMySQL     Dialect = "mysql"
	DialectSQLServer Dialect = "mssql"
	DialectSQLite    Dialect = "sqlite"
	DialectDuckDB    Dialect = "duckdb"
	DialectSnowflake Dialect = "snowflake"
	DialectRedshift  Dialect = "redshift"
)

// Placeholder returns the parameter marker for the 1-based position i.
func (d Dialect) Placeholder(i int) string {
	switch d {
	case DialectPostgres, DialectRedshift, DialectDuckDB:
		return "$" + strconv.Itoa(i)
	case DialectSQLServer:
		return "@p" + strconv.Itoa(i)
	default:
		return "?"
	}
}

// QuoteLiteral escapes a string for embedding as a single-quoted SQL
// literal in reflection queries.
func QuoteLiteral(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}
