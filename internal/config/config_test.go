// ABOUTME: Tests for CLI configuration loading
// ABOUTME: Covers defaults, YAML files and environment overrides
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "opus", cfg.Codec)
	assert.Equal(t, 128, cfg.Bitrate)
	assert.Equal(t, 2, cfg.Channels)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, "tone", cfg.Input)
	assert.Equal(t, 440.0, cfg.Tone.Frequency)
	assert.Equal(t, 10*time.Second, cfg.Tone.Duration)
	assert.Equal(t, "webm", cfg.Container)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.MDNS)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
codec: pcm
bitrate: 256
container: mp4
tone:
  frequency: 1000
  duration: 2s
verify: true
listen: ":8927"
mdns: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "pcm", cfg.Codec)
	assert.Equal(t, 256, cfg.Bitrate)
	assert.Equal(t, "mp4", cfg.Container)
	assert.Equal(t, 1000.0, cfg.Tone.Frequency)
	assert.Equal(t, 2*time.Second, cfg.Tone.Duration)
	assert.True(t, cfg.Verify)
	assert.Equal(t, ":8927", cfg.Listen)
	assert.True(t, cfg.MDNS)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STREAMENC_BITRATE", "64")
	t.Setenv("STREAMENC_SAMPLE_RATE", "48000")
	t.Setenv("STREAMENC_TONE_FREQUENCY", "220")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Bitrate)
	assert.Equal(t, 48000, cfg.SampleRate)
	assert.Equal(t, 220.0, cfg.Tone.Frequency)
}

func TestValidate(t *testing.T) {
	base := Config{Input: "tone", Tone: Tone{Frequency: 440}, Container: "webm"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"raw container", func(c *Config) { c.Container = "raw" }, false},
		{"unknown container", func(c *Config) { c.Container = "ogg" }, true},
		{"no input", func(c *Config) { c.Input = "" }, true},
		{"zero tone", func(c *Config) { c.Tone.Frequency = 0 }, true},
		{"file input ignores tone", func(c *Config) { c.Input = "song.mp3"; c.Tone.Frequency = 0 }, false},
		{"mdns without listen", func(c *Config) { c.MDNS = true }, true},
		{"mdns with listen", func(c *Config) { c.MDNS = true; c.Listen = ":8927" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncoderSettings(t *testing.T) {
	cfg := Config{Codec: "opus", Bitrate: 96}

	assert.Equal(t, "streamenc_opus", cfg.EncoderID())
	assert.Equal(t, 96, cfg.EncoderSettings().GetInt("bitrate"))
}
