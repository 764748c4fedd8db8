// Package remote runs ssh and scp against the media server.
package remote

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default transport settings.
const (
	DefaultSSHBinary = "ssh"
	DefaultSCPBinary = "scp"
	DefaultPort      = 22
	DefaultTailLines = 10
)

// Config configures the transport.
type Config struct {
	User           string
	Host           string // IP or hostname
	Port           int
	IdentityFile   string
	ConnectTimeout time.Duration
	SSHBinary      string
	SCPBinary      string
	LegacySCP      bool     // force the legacy scp protocol (-O); remote paths are then shell-quoted
	Env            []string // environment for every spawned process, see BuildEnv
	TailLines      int      // stderr lines kept for diagnostics
}

// Progress is a single progress sample parsed from scp output.
type Progress struct {
	Percent int
	Line    string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ssh and scp invocations against a single endpoint.
type Client struct {
	cfg  Config
	env  []string
	exec Executor
}

// NewClient constructs a client. The environment in cfg is copied so later
// changes to the caller's slice or to the process environment have no effect.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.User == "" || cfg.Host == "" {
		return nil, fmt.Errorf("%w: user and host required", ErrInvalidConfig)
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.SSHBinary == "" {
		cfg.SSHBinary = DefaultSSHBinary
	}
	if cfg.SCPBinary == "" {
		cfg.SCPBinary = DefaultSCPBinary
	}
	if cfg.TailLines <= 0 {
		cfg.TailLines = DefaultTailLines
	}

	env := make([]string, len(cfg.Env))
	copy(env, cfg.Env)
	cfg.Env = nil

	c := &Client{cfg: cfg, env: env, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Address returns user@host.
func (c *Client) Address() string {
	return c.cfg.User + "@" + c.cfg.Host
}

// Env returns a copy of the transport environment.
func (c *Client) Env() []string {
	env := make([]string, len(c.env))
	copy(env, c.env)
	return env
}

// Exists reports whether path exists on the remote host.
// Exit status 0 means present and 1 means absent; anything else is an error.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	code, tail, err := c.ssh(ctx, "test", "-e", shellQuote(path))
	if err != nil {
		return false, err
	}
	switch code {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, &CommandError{Op: "exists", Code: code, Tail: tail}
	}
}

// MkdirAll creates dir and any missing parents on the remote host.
func (c *Client) MkdirAll(ctx context.Context, dir string) error {
	code, tail, err := c.ssh(ctx, "mkdir", "-p", shellQuote(dir))
	if err != nil {
		return err
	}
	if code != 0 {
		return &CommandError{Op: "mkdir", Code: code, Tail: tail}
	}
	return nil
}

// Ping runs a trivial remote command to prove the endpoint is reachable
// and accepts non-interactive authentication.
func (c *Client) Ping(ctx context.Context) error {
	code, tail, err := c.ssh(ctx, "echo", "connected")
	if err != nil {
		return err
	}
	if code != 0 {
		return &CommandError{Op: "ping", Code: code, Tail: tail}
	}
	return nil
}

// progressPattern matches the percentage column of scp progress lines.
var progressPattern = regexp.MustCompile(`(\d{1,3})%`)

// Copy streams a local file to target on the remote host with scp.
// Success is decided by scp's exit status only; progress samples are
// forwarded to onProgress as they arrive and may stop short of 100.
func (c *Client) Copy(ctx context.Context, local, target string, onProgress func(Progress)) error {
	args := []string{"-v"}
	if c.cfg.LegacySCP {
		args = append(args, "-O")
	}
	args = append(args, "-P", strconv.Itoa(c.cfg.Port))
	args = append(args, c.commonOptions()...)

	dest := target
	if c.cfg.LegacySCP {
		dest = shellQuote(target)
	}
	args = append(args, local, c.Address()+":"+dest)

	tail := newTailBuffer(c.cfg.TailLines)
	code, err := c.exec.Run(ctx, c.cfg.SCPBinary, args, c.Env(), func(line string) {
		if m := progressPattern.FindStringSubmatch(line); m != nil {
			pct, _ := strconv.Atoi(m[1])
			if onProgress != nil {
				onProgress(Progress{Percent: min(pct, 100), Line: line})
			}
			return
		}
		tail.add(line)
	})
	if err != nil {
		return fmt.Errorf("remote copy: %w", err)
	}
	if code != 0 {
		return &CommandError{Op: "copy", Code: code, Tail: tail.lines()}
	}
	return nil
}

func (c *Client) ssh(ctx context.Context, remoteArgs ...string) (int, []string, error) {
	args := []string{"-p", strconv.Itoa(c.cfg.Port)}
	args = append(args, c.commonOptions()...)
	args = append(args, c.Address())
	args = append(args, remoteArgs...)

	tail := newTailBuffer(c.cfg.TailLines)
	code, err := c.exec.Run(ctx, c.cfg.SSHBinary, args, c.Env(), tail.add)
	if err != nil {
		return code, nil, fmt.Errorf("remote %s: %w", remoteArgs[0], err)
	}
	return code, tail.lines(), nil
}

// commonOptions are the -o/-i flags shared by ssh and scp.
func (c *Client) commonOptions() []string {
	opts := []string{"-o", "BatchMode=yes"}
	if c.cfg.ConnectTimeout > 0 {
		secs := int(c.cfg.ConnectTimeout.Round(time.Second) / time.Second)
		opts = append(opts, "-o", "ConnectTimeout="+strconv.Itoa(max(secs, 1)))
	}
	if c.cfg.IdentityFile != "" {
		opts = append(opts, "-i", c.cfg.IdentityFile)
	}
	return opts
}

// shellQuote quotes s for the remote login shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// tailBuffer keeps the last n non-empty lines.
type tailBuffer struct {
	max int
	buf []string
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{max: n}
}

func (t *tailBuffer) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if len(t.buf) == t.max {
		t.buf = t.buf[1:]
	}
	t.buf = append(t.buf, line)
}

func (t *tailBuffer) lines() []string {
	out := make([]string, len(t.buf))
	copy(out, t.buf)
	return out
}
