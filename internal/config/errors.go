package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Discover when no config file exists.
var ErrNotFound = errors.New("config not found")

// ErrExists is returned by WriteDefault when it would overwrite a file.
var ErrExists = errors.New("config file already exists")

// ConfigError reports every problem found in a config file at once.
type ConfigError struct {
	Path    string
	Missing []string // unresolved ${VAR} references
	Errors  []string // validation failures as "key: problem"
}

func (e *ConfigError) Error() string {
	problems := e.Problems()
	switch len(problems) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("config %s: %s", e.Path, problems[0])
	}
	return fmt.Sprintf("config %s: %d problems:\n  - %s", e.Path, len(problems), strings.Join(problems, "\n  - "))
}

// Problems lists unresolved variables first, then validation failures.
func (e *ConfigError) Problems() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Errors))
	for _, name := range e.Missing {
		out = append(out, "environment variable not set: "+name)
	}
	return append(out, e.Errors...)
}
