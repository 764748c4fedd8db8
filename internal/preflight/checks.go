package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/vmunix/arrpush/internal/remote"
)

const remoteCheckName = "Media server"

const defaultRemoteTimeout = 30 * time.Second

// CheckBinary verifies that a command resolves on PATH.
func CheckBinary(name, bin string) Result {
	if bin == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", bin)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckRemote runs a trivial command on the media server.
func CheckRemote(ctx context.Context, p Pinger, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(checkCtx); err != nil {
		return Result{Name: remoteCheckName, Detail: summarizeRemoteError(err)}
	}
	return Result{Name: remoteCheckName, Passed: true, Detail: fmt.Sprintf("%s reachable", p.Address())}
}

func summarizeRemoteError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out waiting for ssh"
	}
	var cmdErr *remote.CommandError
	if errors.As(err, &cmdErr) {
		detail := fmt.Sprintf("ssh exited with status %d", cmdErr.Code)
		if len(cmdErr.Tail) > 0 {
			detail += ": " + strings.TrimSpace(cmdErr.Tail[len(cmdErr.Tail)-1])
		}
		return detail
	}
	return err.Error()
}
