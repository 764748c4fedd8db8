package config

import (
	"fmt"
	"regexp"
)

// envRef matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

type lookupFunc func(name string) (string, bool)

// firstOf consults each lookup in turn.
func firstOf(lookups ...lookupFunc) lookupFunc {
	return func(name string) (string, bool) {
		for _, lookup := range lookups {
			if v, ok := lookup(name); ok {
				return v, true
			}
		}
		return "", false
	}
}

func mapLookup(m map[string]string) lookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// substituteEnv expands variable references in content. References that
// cannot be resolved stay in place and are reported, ":?" ones with their
// message. An empty value counts as unset for ":-" and ":?".
func substituteEnv(content string, lookup lookupFunc) (string, []string) {
	var missing []string
	out := envRef.ReplaceAllStringFunc(content, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		name, op, arg := m[1], m[2], m[3]
		value, ok := lookup(name)

		switch {
		case op == "" && ok:
			return value
		case op == "":
			missing = append(missing, name)
		case ok && value != "":
			return value
		case op == ":-":
			return arg
		default:
			missing = append(missing, fmt.Sprintf("%s: %s", name, arg))
		}
		return ref
	})
	return out, missing
}
