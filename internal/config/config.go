// Package config builds the immutable startup configuration for the
// leader service and validator: the on-disk YAML file, environment
// overrides, and the derived Ed25519 keypair. Mirrors the way the
// teacher's signer package separates the on-disk Config shape from
// the RuntimeConfig that resolves paths against a home directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	cometlog "github.com/cometbft/cometbft/libs/log"
	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"

	"github.com/xcash-project/xcash-temp-consensus/internal/keys"
	"github.com/xcash-project/xcash-temp-consensus/internal/slot"
	"github.com/xcash-project/xcash-temp-consensus/internal/xerrors"
)

// Config maps to the on-disk YAML config format consumed by the
// daemon's temporary-consensus flags.
type Config struct {
	Enabled          bool   `yaml:"temp-consensus-enabled"`
	IsLeader         bool   `yaml:"temp-consensus-leader"`
	DelegateAddress  string `yaml:"delegate-address"`
	DelegateSecret   string `yaml:"delegate-secret-key"`
	ExpectedLeaderID string `yaml:"expected-leader-id,omitempty"`
	Dev              bool   `yaml:"dev,omitempty"`
	DebugAddr        string `yaml:"debug-addr,omitempty"`
}

// MustMarshalYAML renders c as YAML, panicking on the (impossible for
// this struct shape) marshal error, matching the teacher's
// MustMarshalYaml convenience on its own Config type.
func (c *Config) MustMarshalYAML() []byte {
	out, err := yaml.Marshal(c)
	if err != nil {
		panic(err)
	}
	return out
}

// RuntimeConfig resolves the on-disk Config against a home directory
// and derives the values the leader service and validator actually
// consume.
type RuntimeConfig struct {
	HomeDir    string
	ConfigFile string
	Config     Config
}

// DefaultHomeDir returns $HOME/.xcash-temp-consensus.
func DefaultHomeDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".xcash-temp-consensus"), nil
}

// LoadRuntimeConfig reads and parses the YAML config file at
// homeDir/config.yaml.
func LoadRuntimeConfig(homeDir string) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{
		HomeDir:    homeDir,
		ConfigFile: filepath.Join(homeDir, "config.yaml"),
	}
	bz, err := os.ReadFile(rc.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", rc.ConfigFile, err)
	}
	if err := yaml.Unmarshal(bz, &rc.Config); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", rc.ConfigFile, err)
	}
	return rc, nil
}

// WriteConfigFile writes c.Config to c.ConfigFile.
func (c *RuntimeConfig) WriteConfigFile() error {
	if err := os.MkdirAll(c.HomeDir, 0700); err != nil {
		return fmt.Errorf("creating home dir %s: %w", c.HomeDir, err)
	}
	return os.WriteFile(c.ConfigFile, c.Config.MustMarshalYAML(), 0600)
}

// LeaderConfig is the immutable configuration the leader service
// holds for its lifetime.
type LeaderConfig struct {
	LeaderID      string
	KeyPair       keys.KeyPair
	PayoutAddress string
	SlotDuration  slot.Duration
	EnablePoW     bool
}

// ValidatorConfig is the immutable configuration the validator holds
// for its lifetime.
type ValidatorConfig struct {
	Enabled          bool
	ExpectedLeaderID string
	AllowList        [NumSeeds]SeedIdentity
}

// BuildLeaderConfig validates and derives a LeaderConfig from the
// on-disk Config. Any failure here is a ConfigError: the daemon must
// refuse to run rather than start with a half-valid leader identity.
func BuildLeaderConfig(c Config, slotDuration slot.Duration) (LeaderConfig, error) {
	if c.DelegateAddress == "" {
		return LeaderConfig{}, xerrors.NewConfigError("delegate address (leader_id / payout address) is required")
	}
	if len(c.DelegateAddress) > 128 {
		return LeaderConfig{}, xerrors.NewConfigError("delegate address exceeds 128 bytes")
	}
	if FindSeedSlot(c.DelegateAddress) < 0 {
		return LeaderConfig{}, xerrors.NewConfigError("delegate address %q is not a member of the seed allow-list", c.DelegateAddress)
	}
	if c.DelegateSecret == "" {
		return LeaderConfig{}, xerrors.NewConfigError("delegate secret key is required")
	}

	kp, err := keys.DeriveFromHex(c.DelegateSecret)
	if err != nil {
		return LeaderConfig{}, err
	}
	if err := keys.SelfTest(kp); err != nil {
		return LeaderConfig{}, err
	}

	return LeaderConfig{
		LeaderID:      c.DelegateAddress,
		KeyPair:       kp,
		PayoutAddress: c.DelegateAddress,
		SlotDuration:  slotDuration,
		EnablePoW:     false,
	}, nil
}

// BuildValidatorConfig builds an immutable ValidatorConfig snapshot
// from the on-disk Config and the compile-time allow-list.
func BuildValidatorConfig(c Config) ValidatorConfig {
	return ValidatorConfig{
		Enabled:          c.Enabled,
		ExpectedLeaderID: c.ExpectedLeaderID,
		AllowList:        SeedAllowList,
	}
}

// SlotDurationFor returns the production or dev slot duration.
func SlotDurationFor(dev bool) slot.Duration {
	if dev {
		return slot.DevDuration
	}
	return slot.ProdDuration
}

// EnsureNoStaleLock is a small startup guard used by the CLI: it
// refuses to start a second leader process against the same home
// directory, but self-heals when the pidfile is stale (its recorded
// process is no longer alive), matching the teacher's
// RequireNotRunning liveness check.
func EnsureNoStaleLock(logger cometlog.Logger, pidFile string) error {
	data, err := os.ReadFile(pidFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading pidfile %s: %w", pidFile, err)
	}

	pid, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return xerrors.NewConfigError("pidfile %s contains a malformed pid; manual deletion required: %v", pidFile, err)
	}
	if int(pid) == os.Getpid() {
		panic(fmt.Errorf("pidfile %s pid %d matches current process", pidFile, pid))
	}

	process, err := os.FindProcess(int(pid))
	if err != nil {
		return fmt.Errorf("checking pid %d: %w", pid, err)
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return xerrors.NewConfigError("pidfile %s exists and pid %d is alive; is another instance already running?", pidFile, pid)
	}
	if errors.Is(err, os.ErrProcessDone) {
		logger.Error("unclean shutdown detected, removing stale pidfile", "pid", pid, "pid_file", pidFile, "error", err)
		if err := os.Remove(pidFile); err != nil {
			return fmt.Errorf("removing stale pidfile %s: %w", pidFile, err)
		}
		return nil
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ESRCH:
			return fmt.Errorf("search error while signaling pid %d: %w", pid, err)
		case syscall.EPERM:
			return fmt.Errorf("permission denied signaling pid %d: %w", pid, err)
		}
	}
	return fmt.Errorf("unexpected error signaling pid %d: %w", pid, err)
}

// WritePidFile records the current process id, matching the
// teacher's lock-file discipline for single-instance enforcement.
func WritePidFile(pidFile string, pid int) error {
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d\n", pid)), 0600)
}

// RemovePidFile removes the pidfile on clean shutdown.
func RemovePidFile(pidFile string) error {
	err := os.Remove(pidFile)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
