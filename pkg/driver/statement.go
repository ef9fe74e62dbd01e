package driver

import "strings"

// StatementKind is the coarse classification of a SQL statement, used for
// metadata cache invalidation and query/execute routing.
type StatementKind int

const (
	StatementUnknown StatementKind = iota
	StatementDDL
	StatementDML
	StatementQuery
)

func (k StatementKind) String() string {
	switch k {
	case StatementDDL:
		return "ddl"
	case StatementDML:
		return "dml"
	case StatementQuery:
		return "query"
	default:
		return "unknown"
	}
}

var (
	ddlKeywords = map[string]bool{
		"CREATE": true, "ALTER": true, "DROP": true,
		"TRUNCATE": true, "COMMENT": true, "RENAME": true,
	}
	dmlKeywords = map[string]bool{
		"INSERT": true, "UPDATE": true, "DELETE": true,
		"MERGE": true, "REPLACE": true, "UPSERT": true,
	}
	queryKeywords = map[string]bool{
		"SELECT": true, "SHOW": true, "WITH": true, "PRAGMA": true,
		"EXPLAIN": true, "DESCRIBE": true, "DESC": true,
		"VALUES": true, "TABLE": true,
	}
)

// ClassifyStatement inspects the first keyword of sql, skipping leading
// whitespace and comments. Anything unrecognized is Unknown, which callers
// treat conservatively.
func ClassifyStatement(sql string) StatementKind {
	keyword := FirstKeyword(sql)
	switch {
	case keyword == "":
		return StatementUnknown
	case ddlKeywords[keyword]:
		return StatementDDL
	case dmlKeywords[keyword]:
		return StatementDML
	case queryKeywords[keyword]:
		return StatementQuery
	default:
		return StatementUnknown
	}
}

// FirstKeyword returns the leading keyword of a SQL statement, upper-cased,
// with whitespace and line or block comments skipped. Backends that classify
// dialect-specific statements (ATTACH, VACUUM) branch on it.
func FirstKeyword(sql string) string {
	return strings.ToUpper(firstKeyword(sql))
}

func firstKeyword(sql string) string {
	rest := sql
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		switch {
		case strings.HasPrefix(rest, "--"):
			idx := strings.IndexByte(rest, '\n')
			if idx < 0 {
				return ""
			}
			rest = rest[idx+1:]
		case strings.HasPrefix(rest, "/*"):
			idx := strings.Index(rest, "*/")
			if idx < 0 {
				return ""
			}
			rest = rest[idx+2:]
		default:
			end := 0
			for end < len(rest) && isKeywordChar(rest[end]) {
				end++
			}
			return rest[:end]
		}
	}
}

func isKeywordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
