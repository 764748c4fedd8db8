// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Watch   WatchConfig   `toml:"watch"`
	Media   MediaConfig   `toml:"media"`
	Remote  RemoteConfig  `toml:"remote"`
	Daemon  DaemonConfig  `toml:"daemon"`
	History HistoryConfig `toml:"history"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type WatchConfig struct {
	Root      string        `toml:"root"`
	MoviesDir string        `toml:"movies_dir"`
	TVDir     string        `toml:"tv_dir"`
	Settle    time.Duration `toml:"settle"`
	SkipFiles []string      `toml:"skip_files"`
}

type MediaConfig struct {
	VideoExtensions   []string `toml:"video_extensions"`
	SidecarExtensions []string `toml:"sidecar_extensions"`
}

type RemoteConfig struct {
	User           string            `toml:"user"`
	Host           string            `toml:"host"`
	Port           int               `toml:"port"`
	IdentityFile   string            `toml:"identity_file"`
	MoviesRoot     string            `toml:"movies_root"`
	TVRoot         string            `toml:"tv_root"`
	SSHBinary      string            `toml:"ssh_binary"`
	SCPBinary      string            `toml:"scp_binary"`
	LegacySCP      bool              `toml:"legacy_scp"`
	ConnectTimeout time.Duration     `toml:"connect_timeout"`
	Env            map[string]string `toml:"env"`
	InheritEnv     []string          `toml:"inherit_env"`
	TailLines      int               `toml:"tail_lines"`
}

type DaemonConfig struct {
	LockFile string `toml:"lock_file"`
}

type HistoryConfig struct {
	Path      string        `toml:"path"`      // empty disables persistence
	Retention time.Duration `toml:"retention"` // events older than this are pruned at startup; 0 keeps all
}

// Defaults applied by Load when a key is absent.
var (
	DefaultVideoExtensions   = []string{".mp4", ".mkv", ".avi", ".mov", ".webm", ".flv"}
	DefaultSidecarExtensions = []string{".srt", ".sub", ".idx", ".ass", ".ssa", ".vtt"}
	DefaultSkipFiles         = []string{".DS_Store", "Thumbs.db", "desktop.ini"}
	DefaultInheritEnv        = []string{"HOME", "PATH", "SSH_AUTH_SOCK", "USER"}
)

const (
	defaultRoot           = "~/Transfers"
	defaultSettle         = 2 * time.Second
	defaultConnectTimeout = 10 * time.Second
	defaultTailLines      = 10
	defaultRetention      = 30 * 24 * time.Hour
)

// Load reads, parses and validates the configuration file.
// Returns *ConfigError for unresolved variables or validation failures.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file and applies
// defaults, skipping validation.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dotenv, err := readDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	if err != nil {
		return nil, err
	}

	content, missing := substituteEnv(string(data), firstOf(os.LookupEnv, mapLookup(dotenv)))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults(md)
	return &cfg, nil
}

// readDotEnv reads an optional .env file beside the config file.
func readDotEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}

func (c *Config) applyDefaults(md toml.MetaData) {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Watch.Root == "" {
		c.Watch.Root = defaultRoot
	}
	c.Watch.Root = ExpandHome(c.Watch.Root)
	if c.Watch.MoviesDir == "" {
		c.Watch.MoviesDir = "Movies"
	}
	if c.Watch.TVDir == "" {
		c.Watch.TVDir = "TV shows"
	}
	if !md.IsDefined("watch", "settle") {
		c.Watch.Settle = defaultSettle
	}
	if !md.IsDefined("watch", "skip_files") {
		c.Watch.SkipFiles = DefaultSkipFiles
	}

	if !md.IsDefined("media", "video_extensions") {
		c.Media.VideoExtensions = DefaultVideoExtensions
	}
	if !md.IsDefined("media", "sidecar_extensions") {
		c.Media.SidecarExtensions = DefaultSidecarExtensions
	}

	if c.Remote.Port == 0 {
		c.Remote.Port = 22
	}
	if c.Remote.SSHBinary == "" {
		c.Remote.SSHBinary = "ssh"
	}
	if c.Remote.SCPBinary == "" {
		c.Remote.SCPBinary = "scp"
	}
	if !md.IsDefined("remote", "connect_timeout") {
		c.Remote.ConnectTimeout = defaultConnectTimeout
	}
	if !md.IsDefined("remote", "inherit_env") {
		c.Remote.InheritEnv = DefaultInheritEnv
	}
	if !md.IsDefined("remote", "tail_lines") {
		c.Remote.TailLines = defaultTailLines
	}
	c.Remote.IdentityFile = ExpandHome(c.Remote.IdentityFile)

	if c.Daemon.LockFile == "" {
		c.Daemon.LockFile = defaultLockFile()
	}
	c.Daemon.LockFile = ExpandHome(c.Daemon.LockFile)
	c.History.Path = ExpandHome(c.History.Path)
	if !md.IsDefined("history", "retention") {
		c.History.Retention = defaultRetention
	}
}

func defaultLockFile() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "arrpush.lock")
	}
	return filepath.Join(os.TempDir(), "arrpush.lock")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
