package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPreflightFailed wraps local check failures.
var ErrPreflightFailed = errors.New("preflight failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Pinger is a remote endpoint that can be probed.
type Pinger interface {
	Address() string
	Ping(ctx context.Context) error
}

// Checks configures RunAll.
type Checks struct {
	SSHBinary string
	SCPBinary string
	WatchRoot string
	Remote    Pinger
	Timeout   time.Duration // bound on the remote probe; 0 means 30s
}

// Hints are printed when the media server cannot be reached.
var Hints = []string{
	"Is the media server online?",
	"Is SSH enabled on the server?",
	"Is the hostname or IP address correct?",
	"Are both machines on the same network?",
	"Does key-based login work without a password prompt?",
}

// ConnectivityError reports that the media server could not be reached.
type ConnectivityError struct {
	Address string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Address, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Hints returns the checklist to show alongside the error.
func (e *ConnectivityError) Hints() []string { return Hints }

// RunAll executes every check. The remote probe is skipped when a
// transport binary is missing since it could not succeed.
func RunAll(ctx context.Context, c Checks) []Result {
	results := []Result{
		CheckBinary("ssh", c.SSHBinary),
		CheckBinary("scp", c.SCPBinary),
		CheckDirectoryAccess("Watch root", c.WatchRoot),
	}
	if c.Remote == nil {
		return results
	}
	if !results[0].Passed {
		return append(results, Result{Name: "Media server", Detail: "skipped (ssh not available)"})
	}
	return append(results, CheckRemote(ctx, c.Remote, c.Timeout))
}

// Verify runs all checks and turns failures into an error. Local failures
// are reported first; an unreachable server yields *ConnectivityError.
func Verify(ctx context.Context, c Checks) error {
	var failed []string
	var remoteErr error
	for _, r := range RunAll(ctx, c) {
		switch {
		case r.Passed:
		case r.Name == remoteCheckName:
			remoteErr = errors.New(r.Detail)
		default:
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrPreflightFailed, strings.Join(failed, "; "))
	}
	if remoteErr != nil {
		return &ConnectivityError{Address: c.Remote.Address(), Err: remoteErr}
	}
	return nil
}
