package params

import (
	"strings"

	"github.com/ariel-frischer/poretally/internal/rule"
)

// Render substitutes every {NAME} placeholder in tmpl. Unknown names fail
// with a *MissingParameterError naming pipeline and the placeholder.
func (c *Context) Render(pipeline, tmpl string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(tmpl))

	var missing []string
	seen := make(map[string]bool)

	scan(tmpl,
		func(lit string) { sb.WriteString(lit) },
		func(name string) {
			if v, ok := c.Lookup(name); ok {
				sb.WriteString(v.String())
				return
			}
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
		},
	)

	if len(missing) > 0 {
		return "", &MissingParameterError{
			Pipeline:    pipeline,
			Placeholder: missing[0],
			Others:      missing[1:],
		}
	}
	return sb.String(), nil
}

// Placeholders returns the distinct names referenced by tmpl in order of
// first appearance.
func Placeholders(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)
	scan(tmpl, func(string) {}, func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names
}

// scan walks tmpl and reports literal runs and placeholder names.
// "{{" and "}}" are literal braces. A "{" that does not open an
// identifier followed by "}" is literal text.
func scan(tmpl string, literal func(string), placeholder func(string)) {
	start := 0
	flush := func(end int) {
		if end > start {
			literal(tmpl[start:end])
		}
	}

	for i := 0; i < len(tmpl); {
		switch tmpl[i] {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				flush(i)
				literal("{")
				i += 2
				start = i
				continue
			}
			if end := strings.IndexByte(tmpl[i+1:], '}'); end >= 0 {
				name := tmpl[i+1 : i+1+end]
				if rule.IsIdentifier(name) {
					flush(i)
					placeholder(name)
					i += end + 2
					start = i
					continue
				}
			}
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				flush(i)
				literal("}")
				i += 2
				start = i
				continue
			}
		}
		i++
	}
	flush(len(tmpl))
}
