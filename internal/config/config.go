// ABOUTME: CLI configuration loaded through viper
// ABOUTME: Defaults, optional streamenc.yaml and STREAMENC_* environment variables
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Resonate-Protocol/streamenc-go/pkg/streamenc"
)

// EnvPrefix prefixes every environment override, e.g. STREAMENC_BITRATE
const EnvPrefix = "STREAMENC"

// Tone configures the generated test signal used when Input is "tone"
type Tone struct {
	Frequency float64       `mapstructure:"frequency"`
	Duration  time.Duration `mapstructure:"duration"`
}

// Config is everything `streamenc encode` needs
type Config struct {
	Codec      string `mapstructure:"codec"`
	Bitrate    int    `mapstructure:"bitrate"` // kbps
	Channels   int    `mapstructure:"channels"`
	SampleRate int    `mapstructure:"sample_rate"`

	// Input is a file path, an http(s) URL or "tone"
	Input string `mapstructure:"input"`
	Tone  Tone   `mapstructure:"tone"`

	// Output is a file path, "-" for stdout, or empty to discard
	Output    string `mapstructure:"output"`
	Container string `mapstructure:"container"` // webm, mp4 or raw

	Listen      string `mapstructure:"listen"`
	MDNS        bool   `mapstructure:"mdns"` // advertise Listen via mDNS
	MetricsAddr string `mapstructure:"metrics_addr"`
	LogLevel    string `mapstructure:"log_level"`
	Realtime    bool   `mapstructure:"realtime"`
	Verify      bool   `mapstructure:"verify"`
}

// New returns a viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("codec", streamenc.DefaultCodec)
	v.SetDefault("bitrate", 128)
	v.SetDefault("channels", 2)
	v.SetDefault("sample_rate", 44100)
	v.SetDefault("input", "tone")
	v.SetDefault("tone.frequency", 440.0)
	v.SetDefault("tone.duration", 10*time.Second)
	v.SetDefault("output", "")
	v.SetDefault("container", "webm")
	v.SetDefault("listen", "")
	v.SetDefault("mdns", false)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("realtime", false)
	v.SetDefault("verify", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("streamenc")
	v.SetConfigType("yaml")
	for _, path := range []string{".", "$HOME/.streamenc", "/etc/streamenc"} {
		v.AddConfigPath(os.ExpandEnv(path))
	}
	return v
}

// Load reads the config file, if any, and decodes v. An explicit configFile
// must exist; the search path is allowed to come up empty.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the encoder itself does not
func (c Config) Validate() error {
	switch c.Container {
	case "webm", "mp4", "raw":
	default:
		return fmt.Errorf("unknown container %q (supported: webm, mp4, raw)", c.Container)
	}
	if c.Input == "" {
		return errors.New("no input given")
	}
	if c.Input == "tone" && c.Tone.Frequency <= 0 {
		return fmt.Errorf("invalid tone frequency: %v", c.Tone.Frequency)
	}
	if c.MDNS && c.Listen == "" {
		return errors.New("mdns needs a listen address")
	}
	return nil
}

// EncoderID names the registered encoder for the configured codec
func (c Config) EncoderID() string {
	return "streamenc_" + c.Codec
}

// EncoderSettings returns the encoder properties for the registration schema
func (c Config) EncoderSettings() *viper.Viper {
	settings := viper.New()
	settings.Set("bitrate", c.Bitrate)
	return settings
}
