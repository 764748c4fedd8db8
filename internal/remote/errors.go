package remote

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig indicates the endpoint is missing required fields.
	ErrInvalidConfig = errors.New("invalid remote config")

	// ErrCommandFailed indicates a remote command or copy exited non-zero.
	ErrCommandFailed = errors.New("remote command failed")
)

// CommandError describes a transport process that ran but exited non-zero.
type CommandError struct {
	Op   string   // "exists", "mkdir", "copy", "ping"
	Code int      // process exit status
	Tail []string // trailing stderr lines, oldest first
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("remote %s: exit status %d", e.Op, e.Code)
	if len(e.Tail) > 0 {
		msg += ": " + strings.TrimSpace(e.Tail[len(e.Tail)-1])
	}
	return msg
}

func (e *CommandError) Unwrap() error { return ErrCommandFailed }
