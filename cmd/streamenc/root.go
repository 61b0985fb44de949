// ABOUTME: Root command and the small informational subcommands
// ABOUTME: Owns the shared viper instance and persistent flags
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Resonate-Protocol/streamenc-go/internal/config"
	"github.com/Resonate-Protocol/streamenc-go/internal/registration"
	"github.com/Resonate-Protocol/streamenc-go/internal/version"
	"github.com/Resonate-Protocol/streamenc-go/pkg/codec"
)

type rootOptions struct {
	configFile string
	v          *viper.Viper
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{v: config.New()}

	cmd := &cobra.Command{
		Use:          "streamenc",
		Short:        "Encode PCM audio into Opus or PCM packet streams",
		Long:         "streamenc feeds audio from a file, URL or test tone through the streaming encoder and writes WebM, fragmented MP4 or raw packets, optionally broadcasting them to websocket listeners.",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: streamenc.yaml in ., $HOME/.streamenc, /etc/streamenc)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = opts.v.BindPFlag("log_level", flags.Lookup("log-level"))

	cmd.AddCommand(newEncodeCommand(opts))
	cmd.AddCommand(newCodecsCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newCodecsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "codecs",
		Short: "List the registered codecs and encoders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %-14s %-10s %s\n", "NAME", "BITRATE(kbps)", "CHANNELS", "FRAME@48k")
			for _, name := range codec.Names() {
				d, _ := codec.Lookup(name)
				bitrate := "-"
				if d.MaxBitrate > 0 {
					bitrate = fmt.Sprintf("%d-%d", d.MinBitrate, d.MaxBitrate)
				}
				fmt.Fprintf(out, "%-8s %-14s %-10s %d\n",
					d.Name, bitrate, fmt.Sprintf("%d-%d", d.MinChannels, d.MaxChannels), d.FrameSize(48000))
			}

			fmt.Fprintf(out, "\n%-16s %-14s %-6s %s\n", "ENCODER", "NAME", "FORMAT", "SETTINGS")
			for _, info := range registration.Encoders() {
				settings := make([]string, 0, len(info.Properties))
				for _, p := range info.Properties {
					settings = append(settings, fmt.Sprintf("%s=%d..%d/%d (default %d)", p.Key, p.Min, p.Max, p.Step, p.Default))
				}
				fmt.Fprintf(out, "%-16s %-14s %-6s %s\n", info.ID, info.Name, info.AudioFormat, strings.Join(settings, " "))
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
