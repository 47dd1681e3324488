package config

import (
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/xocoro/scheduler"
)

func memOpts(fs afero.Fs) func(o *Options) {
	return func(o *Options) {
		o.Fs = fs
		o.Home = "/home/player"
		o.Output = io.Discard
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XO_CONFIG", "")

	c, err := Load(nil, memOpts(afero.NewMemMapFs()))
	require.NoError(t, err)

	assert.Equal(t, Default(), c)
	assert.Equal(t, "/dev/kxo", c.Device.Path)
	assert.Equal(t, "/sys/module/kxo/initstate", c.Device.StatusFile)
	assert.Equal(t, "/sys/class/kxo/kxo/kxo_state", c.Device.AttrFile)
	assert.Equal(t, 10, c.Runtime.Capacity)
	assert.Equal(t, 100*time.Millisecond, c.Scheduler.PollTimeout)
	assert.Equal(t, time.Duration(0), c.Scheduler.Interval)
	assert.Equal(t, "sweep", c.Scheduler.StopPolicy)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
	assert.Empty(t, c.Archive.Path)
	assert.NoError(t, c.Validate())
}

func TestLoad_HomeConfigFile(t *testing.T) {
	t.Setenv("XO_CONFIG", "")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/player/.config/xo-user/config.toml", []byte(`
[scheduler]
poll_timeout = "250ms"
stop_policy = "immediate"

[archive]
path = "/var/lib/xo/archive.db"
`), 0o644))

	c, err := Load(nil, memOpts(fs))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, c.Scheduler.PollTimeout)
	assert.Equal(t, scheduler.StopImmediately, c.StopPolicy())
	assert.Equal(t, "/var/lib/xo/archive.db", c.Archive.Path)
}

func TestLoad_Precedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/xo.toml", []byte(`
[log]
level = "error"
format = "json"

[runtime]
capacity = 4
`), 0o644))
	t.Setenv("XO_CONFIG", "/etc/xo.toml")
	t.Setenv("XO_LOG_FORMAT", "text")

	c, err := Load([]string{"--log-level", "debug"}, memOpts(fs))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level, "flag beats file")
	assert.Equal(t, "text", c.Log.Format, "env beats file")
	assert.Equal(t, 4, c.Runtime.Capacity, "file beats default")
}

func TestLoad_ConfigFlag(t *testing.T) {
	t.Setenv("XO_CONFIG", "")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/custom.toml", []byte("[device]\npath = \"/dev/kxo1\"\n"), 0o644))

	c, err := Load([]string{"--config", "/tmp/custom.toml", "--archive", "/tmp/a.db"}, memOpts(fs))
	require.NoError(t, err)
	assert.Equal(t, "/dev/kxo1", c.Device.Path)
	assert.Equal(t, "/tmp/a.db", c.Archive.Path)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("XO_CONFIG", "")
	_, err := Load([]string{"--config", "/nope.toml"}, memOpts(afero.NewMemMapFs()))
	assert.Error(t, err)
}

func TestLoad_Help(t *testing.T) {
	_, err := Load([]string{"--help"}, memOpts(afero.NewMemMapFs()))
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestLoad_UnknownFlag(t *testing.T) {
	_, err := Load([]string{"--bogus"}, memOpts(afero.NewMemMapFs()))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"capacity", func(c *Config) { c.Runtime.Capacity = 0 }},
		{"poll timeout", func(c *Config) { c.Scheduler.PollTimeout = -time.Second }},
		{"interval", func(c *Config) { c.Scheduler.Interval = -time.Second }},
		{"stop policy", func(c *Config) { c.Scheduler.StopPolicy = "eventually" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"device", func(c *Config) { c.Device.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
