// Package template implements {name} placeholder templates for prompt text.
//
// A placeholder is an open brace, a name matching [A-Za-z_][A-Za-z0-9_]*,
// and a close brace. Doubled braces ("{{" and "}}") are literal brace
// escapes: they never produce a variable and unescape to a single brace on
// fill. Brace pairs whose contents do not form a valid name (spaces,
// colons, nesting) are left verbatim and are not variables.
package template

import (
	"fmt"
	"sort"
	"strings"
)

// MissingVariableError reports placeholders that have no value in the
// variable set. Names are sorted and deduplicated.
type MissingVariableError struct {
	Names []string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing variables: %s", strings.Join(e.Names, ", "))
}

// Detect returns the distinct placeholder names in tmpl, in order of first
// appearance. See the package comment for the exclusion policy.
func Detect(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)
	walk(tmpl, func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}, nil)
	return names
}

// Fill substitutes every placeholder in tmpl with its value from vars and
// unescapes doubled braces. The operation is atomic: if any placeholder
// lacks a value, Fill returns a MissingVariableError naming all missing
// variables and performs no substitution at all.
func Fill(tmpl string, vars map[string]string) (string, error) {
	missing := make(map[string]bool)
	walk(tmpl, func(name string) {
		if _, ok := vars[name]; !ok {
			missing[name] = true
		}
	}, nil)
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return "", &MissingVariableError{Names: names}
	}

	var sb strings.Builder
	sb.Grow(len(tmpl))
	walk(tmpl, func(name string) {
		sb.WriteString(vars[name])
	}, &sb)
	return sb.String(), nil
}

// walk scans tmpl once. onVar is called for each placeholder occurrence;
// when out is non-nil every non-placeholder byte is written to it, with
// doubled braces collapsed to single ones.
func walk(tmpl string, onVar func(name string), out *strings.Builder) {
	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				if out != nil {
					out.WriteByte('{')
				}
				i += 2
				continue
			}
			if end, ok := placeholderEnd(tmpl, i); ok {
				onVar(tmpl[i+1 : end])
				i = end + 1
				continue
			}
			if out != nil {
				out.WriteByte(c)
			}
			i++
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				if out != nil {
					out.WriteByte('}')
				}
				i += 2
				continue
			}
			if out != nil {
				out.WriteByte(c)
			}
			i++
		default:
			if out != nil {
				out.WriteByte(c)
			}
			i++
		}
	}
}

// placeholderEnd returns the index of the closing brace for a placeholder
// opening at tmpl[open], or false if the contents are not a valid name.
func placeholderEnd(tmpl string, open int) (int, bool) {
	i := open + 1
	if i >= len(tmpl) || !nameStart(tmpl[i]) {
		return 0, false
	}
	for i < len(tmpl) && nameRest(tmpl[i]) {
		i++
	}
	if i < len(tmpl) && tmpl[i] == '}' {
		return i, true
	}
	return 0, false
}

func nameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func nameRest(c byte) bool {
	return nameStart(c) || (c >= '0' && c <= '9')
}
