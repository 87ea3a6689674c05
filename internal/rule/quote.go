package rule

import (
	"fmt"
	"strings"
)

// UnquotableError reports a value that the single-quote escaping rule
// cannot carry.
type UnquotableError struct {
	Value string
	Char  rune
}

// Error implements the error interface.
func (e *UnquotableError) Error() string {
	return fmt.Sprintf("value %q contains %q, which cannot be quoted", e.Value, e.Char)
}

// Quote wraps s in single quotes, escaping embedded single quotes with a
// backslash. Backslashes, line breaks and NUL bytes are rejected: the
// escaping rule has no form for them and they would end the string early
// or change its meaning.
func Quote(s string) (string, error) {
	if i := strings.IndexAny(s, "\\\n\r\x00"); i >= 0 {
		return "", &UnquotableError{Value: s, Char: rune(s[i])}
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'", nil
}

// Unquote reverses Quote.
func Unquote(q string) (string, error) {
	if len(q) < 2 || q[0] != '\'' || q[len(q)-1] != '\'' {
		return "", fmt.Errorf("not a single-quoted value: %s", q)
	}
	inner := q[1 : len(q)-1]

	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\':
			if i+1 >= len(inner) || inner[i+1] != '\'' {
				return "", fmt.Errorf("unsupported escape at offset %d in %s", i+1, q)
			}
			sb.WriteByte('\'')
			i++
		case '\'':
			return "", fmt.Errorf("unescaped quote at offset %d in %s", i+1, q)
		default:
			sb.WriteByte(inner[i])
		}
	}
	return sb.String(), nil
}
