package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/arrpush/internal/remote"
)

type fakePinger struct {
	err   error
	calls int
}

func (f *fakePinger) Address() string { return "media@nas.local" }

func (f *fakePinger) Ping(ctx context.Context) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return ctx.Err()
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, CheckDirectoryAccess("test", dir).Passed)

	missing := CheckDirectoryAccess("test", filepath.Join(dir, "nope"))
	assert.False(t, missing.Passed)
	assert.Contains(t, missing.Detail, "does not exist")

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	notDir := CheckDirectoryAccess("test", file)
	assert.False(t, notDir.Passed)
	assert.Contains(t, notDir.Detail, "is not a directory")
}

func TestCheckBinary(t *testing.T) {
	assert.True(t, CheckBinary("sh", "sh").Passed)

	missing := CheckBinary("scp", "arrpush-no-such-binary")
	assert.False(t, missing.Passed)
	assert.Contains(t, missing.Detail, "not found on PATH")

	assert.False(t, CheckBinary("ssh", "").Passed)
}

func TestCheckRemote(t *testing.T) {
	ok := CheckRemote(context.Background(), &fakePinger{}, time.Second)
	assert.True(t, ok.Passed)
	assert.Contains(t, ok.Detail, "media@nas.local")

	failed := CheckRemote(context.Background(), &fakePinger{
		err: &remote.CommandError{Op: "ping", Code: 255, Tail: []string{"ssh: connect to host nas.local port 22: Connection refused"}},
	}, time.Second)
	assert.False(t, failed.Passed)
	assert.Equal(t, "ssh exited with status 255: ssh: connect to host nas.local port 22: Connection refused", failed.Detail)

	timedOut := CheckRemote(context.Background(), &fakePinger{err: context.DeadlineExceeded}, time.Second)
	assert.Equal(t, "timed out waiting for ssh", timedOut.Detail)
}

func TestRunAll_SkipsRemoteWithoutSSH(t *testing.T) {
	p := &fakePinger{}
	results := RunAll(context.Background(), Checks{
		SSHBinary: "arrpush-no-such-ssh",
		SCPBinary: "sh",
		WatchRoot: t.TempDir(),
		Remote:    p,
	})

	require.Len(t, results, 4)
	assert.False(t, results[0].Passed)
	assert.True(t, results[1].Passed)
	assert.True(t, results[2].Passed)
	assert.Contains(t, results[3].Detail, "skipped")
	assert.Zero(t, p.calls)
}

func TestVerify(t *testing.T) {
	root := t.TempDir()

	t.Run("all pass", func(t *testing.T) {
		err := Verify(context.Background(), Checks{SSHBinary: "sh", SCPBinary: "sh", WatchRoot: root, Remote: &fakePinger{}})
		assert.NoError(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		err := Verify(context.Background(), Checks{
			SSHBinary: "sh",
			SCPBinary: "sh",
			WatchRoot: root,
			Remote:    &fakePinger{err: errors.New("no route to host")},
		})
		var connErr *ConnectivityError
		require.True(t, errors.As(err, &connErr))
		assert.Equal(t, "media@nas.local", connErr.Address)
		assert.Contains(t, err.Error(), "no route to host")
		assert.NotEmpty(t, connErr.Hints())
	})

	t.Run("local failure", func(t *testing.T) {
		err := Verify(context.Background(), Checks{
			SSHBinary: "sh",
			SCPBinary: "arrpush-no-such-scp",
			WatchRoot: filepath.Join(root, "missing"),
		})
		assert.ErrorIs(t, err, ErrPreflightFailed)
		assert.Contains(t, err.Error(), "scp")
		assert.Contains(t, err.Error(), "Watch root")
	})
}
