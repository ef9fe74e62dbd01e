package shell

import "strings"

// Tokenize splits an input line into tokens, honoring single- and
// double-quoted segments and backslash-escaped characters. Quotes group
// but do not appear in the token.
func Tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote rune
	escaped := false

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			inToken = true
			escaped = false
		case r == '\\':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens
}
