// Package config loads xo-user settings from defaults, an optional TOML
// file, XO_ environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/xocoro/coroutine"
	"github.com/hupe1980/xocoro/kxo"
	"github.com/hupe1980/xocoro/logging"
	"github.com/hupe1980/xocoro/scheduler"
)

// EnvPrefix prefixes every environment override, e.g. XO_LOG_LEVEL.
const EnvPrefix = "XO"

// Config holds the client configuration.
type Config struct {
	Device    DeviceConfig    `mapstructure:"device"`
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

// DeviceConfig locates the kernel module's files.
type DeviceConfig struct {
	StatusFile string `mapstructure:"status_file"`
	Path       string `mapstructure:"path"`
	AttrFile   string `mapstructure:"attr_file"`
}

// RuntimeConfig sizes the coroutine runtime.
type RuntimeConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// SchedulerConfig tunes the sweep loop and the tasks' I/O waits.
type SchedulerConfig struct {
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	Interval    time.Duration `mapstructure:"interval"`
	StopPolicy  string        `mapstructure:"stop_policy"`
}

// LogConfig selects the diagnostic output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ArchiveConfig enables the history archive. An empty path disables it.
type ArchiveConfig struct {
	Path string `mapstructure:"path"`
}

// Options configures Load.
type Options struct {
	// Fs is the filesystem the config file is read from.
	Fs afero.Fs
	// Home is the directory searched for .config/xo-user/config.toml.
	Home string
	// Output receives flag usage.
	Output io.Writer
}

// Load builds a Config from args (without the program name). It returns
// pflag.ErrHelp when -h or --help was given.
func Load(args []string, optFns ...func(o *Options)) (Config, error) {
	home, _ := os.UserHomeDir()
	opts := Options{
		Fs:     afero.NewOsFs(),
		Home:   home,
		Output: os.Stderr,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	v := viper.New()
	v.SetFs(opts.Fs)
	setDefaults(v)

	flags := newFlagSet(opts.Output)
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	for key, name := range boundFlags {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	v.SetConfigType("toml")
	cfgPath, _ := flags.GetString("config")
	if cfgPath == "" {
		cfgPath = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(opts.Home, ".config", "xo-user"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.status_file", kxo.StatusFile)
	v.SetDefault("device.path", kxo.DeviceFile)
	v.SetDefault("device.attr_file", kxo.AttrFile)
	v.SetDefault("runtime.capacity", coroutine.DefaultCapacity)
	v.SetDefault("scheduler.poll_timeout", 100*time.Millisecond)
	v.SetDefault("scheduler.interval", time.Duration(0))
	v.SetDefault("scheduler.stop_policy", scheduler.StopAtSweepBoundary.String())
	v.SetDefault("log.level", logging.LogLevelWarn.String())
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("archive.path", "")
}

// boundFlags maps config keys to the flags overriding them.
var boundFlags = map[string]string{
	"log.level":        "log-level",
	"log.format":       "log-format",
	"log.file":         "log-file",
	"archive.path":     "archive",
	"device.path":      "device",
	"runtime.capacity": "capacity",
}

func newFlagSet(out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("xo-user", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.String("config", "", "config file (default ~/.config/xo-user/config.toml)")
	fs.String("log-level", logging.LogLevelWarn.String(), "log level: debug, info, warn, error")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("log-file", "", "write logs to this file instead of stderr")
	fs.String("archive", "", "SQLite file that game histories are archived to")
	fs.String("device", kxo.DeviceFile, "kxo character device")
	fs.Int("capacity", coroutine.DefaultCapacity, "coroutine table capacity")
	return fs
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Runtime.Capacity < 1 {
		return fmt.Errorf("runtime.capacity must be at least 1, got %d", c.Runtime.Capacity)
	}
	if c.Scheduler.PollTimeout < 0 {
		return fmt.Errorf("scheduler.poll_timeout must not be negative, got %s", c.Scheduler.PollTimeout)
	}
	if c.Scheduler.Interval < 0 {
		return fmt.Errorf("scheduler.interval must not be negative, got %s", c.Scheduler.Interval)
	}
	if _, err := scheduler.ParseStopPolicy(c.Scheduler.StopPolicy); err != nil {
		return fmt.Errorf("scheduler.stop_policy: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Device.Path == "" || c.Device.StatusFile == "" || c.Device.AttrFile == "" {
		return errors.New("device paths must not be empty")
	}
	return nil
}

// StopPolicy returns the parsed scheduler.stop_policy.
func (c Config) StopPolicy() scheduler.StopPolicy {
	p, _ := scheduler.ParseStopPolicy(c.Scheduler.StopPolicy)
	return p
}
