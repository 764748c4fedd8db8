package remote

import (
	"os"
	"sort"
)

// BuildEnv assembles the environment handed to ssh and scp.
// Variables named in inherit are copied from the current process when set;
// explicit entries win over inherited ones. The result is sorted.
func BuildEnv(explicit map[string]string, inherit []string) []string {
	return buildEnv(explicit, inherit, os.LookupEnv)
}

func buildEnv(explicit map[string]string, inherit []string, lookup func(string) (string, bool)) []string {
	vars := make(map[string]string, len(explicit)+len(inherit))
	for _, name := range inherit {
		if v, ok := lookup(name); ok {
			vars[name] = v
		}
	}
	for k, v := range explicit {
		vars[k] = v
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
