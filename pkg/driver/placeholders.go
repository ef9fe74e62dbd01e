package driver

import (
	"strconv"
	"strings"
)

// ConvertToNumberedPlaceholders rewrites ? markers to $1, $2, ... for
// PostgreSQL-family backends. Quoted segments are left untouched.
func ConvertToNumberedPlaceholders(sql string) string {
	return convertQuestionMarks(sql, "$")
}

// ConvertToAtPlaceholders rewrites ? markers to @p1, @p2, ... for SQL
// Server. Quoted segments are left untouched.
func ConvertToAtPlaceholders(sql string) string {
	return convertQuestionMarks(sql, "@p")
}

func convertQuestionMarks(sql, prefix string) string {
	var sb strings.Builder
	sb.Grow(len(sql))
	index := 0
	for i := 0; i < len(sql); i++ {
		switch c := sql[i]; c {
		case '\'', '"':
			quote := c
			sb.WriteByte(c)
			for i++; i < len(sql); i++ {
				sb.WriteByte(sql[i])
				if sql[i] == quote {
					break
				}
			}
		case '?':
			index++
			sb.WriteString(prefix)
			sb.WriteString(strconv.Itoa(index))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
