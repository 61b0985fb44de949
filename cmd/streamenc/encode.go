// ABOUTME: `streamenc encode`: source -> encoder -> container, websocket and verifier
// ABOUTME: Runs the encode loop next to the metrics and stream servers in one errgroup
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Resonate-Protocol/streamenc-go/internal/config"
	"github.com/Resonate-Protocol/streamenc-go/internal/discovery"
	"github.com/Resonate-Protocol/streamenc-go/internal/logging"
	"github.com/Resonate-Protocol/streamenc-go/internal/mux"
	"github.com/Resonate-Protocol/streamenc-go/internal/registration"
	"github.com/Resonate-Protocol/streamenc-go/internal/source"
	"github.com/Resonate-Protocol/streamenc-go/internal/stream"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio/decode"
	"github.com/Resonate-Protocol/streamenc-go/pkg/audio/encode"
	"github.com/Resonate-Protocol/streamenc-go/pkg/codec"
	"github.com/Resonate-Protocol/streamenc-go/pkg/streamenc"
)

const shutdownTimeout = 5 * time.Second

// encodeFlags maps flag names to config keys
var encodeFlags = map[string]string{
	"codec":          "codec",
	"bitrate":        "bitrate",
	"channels":       "channels",
	"sample-rate":    "sample_rate",
	"input":          "input",
	"tone-frequency": "tone.frequency",
	"tone-duration":  "tone.duration",
	"output":         "output",
	"container":      "container",
	"listen":         "listen",
	"mdns":           "mdns",
	"metrics-addr":   "metrics_addr",
	"realtime":       "realtime",
	"verify":         "verify",
}

func newEncodeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode an audio source",
		Example: `  streamenc encode --output tone.webm
  streamenc encode --input song.flac --codec opus --bitrate 96 --container mp4 --output song.mp4
  streamenc encode --input http://radio.example/stream.mp3 --listen :8927 --realtime
  streamenc encode --codec pcm --container raw --output - --verify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.v, opts.configFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runEncode(ctx, cfg, logger, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("codec", streamenc.DefaultCodec, "Codec (see `streamenc codecs`)")
	flags.Int("bitrate", 128, "Target bitrate in kbps (opus: 32-256 in steps of 32)")
	flags.Int("channels", 2, "Channels for the tone input")
	flags.Int("sample-rate", 44100, "Sample rate for the tone input")
	flags.StringP("input", "i", "tone", "Input: tone, an .mp3/.flac file or an http(s) MP3 URL")
	flags.Float64("tone-frequency", 440, "Tone frequency in Hz")
	flags.Duration("tone-duration", 10*time.Second, "Tone length, 0 for endless")
	flags.StringP("output", "o", "", "Output file, - for stdout, empty to discard")
	flags.String("container", "webm", "Output container (webm, mp4, raw)")
	flags.String("listen", "", "Broadcast packets to websocket listeners on this address")
	flags.Bool("mdns", false, "Advertise the --listen server via mDNS")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.Bool("realtime", false, "Pace input at the source's real-time rate")
	flags.Bool("verify", false, "Decode every packet and check its length")

	for flag, key := range encodeFlags {
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}

	cmd.RegisterFlagCompletionFunc("container", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"webm", "mp4", "raw"}, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.RegisterFlagCompletionFunc("codec", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return codec.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// runEncode wires the pipeline for cfg and runs it until the source ends,
// ctx is cancelled, or a component fails.
func runEncode(ctx context.Context, cfg config.Config, logger *zap.Logger, stdout io.Writer) error {
	src, err := source.Open(ctx, cfg.Input, source.ToneOptions{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
		Frequency:  cfg.Tone.Frequency,
		Duration:   cfg.Tone.Duration,
	}, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	enc, err := registration.Create(cfg.EncoderID(), cfg.EncoderSettings(), registration.AudioInfo{
		SampleRate: src.SampleRate(),
		Channels:   src.Channels(),
	}, logger)
	if err != nil {
		return err
	}
	defer enc.Close()
	extra, _ := registration.ExtraData(enc)

	p := &pipeline{enc: enc, logger: logger, realtime: cfg.Realtime}

	out, closeOut, err := openOutput(cfg.Output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()
	if out != nil {
		w, err := mux.New(cfg.Container, out, mux.Track{
			Codec:         enc.Codec(),
			SampleRate:    enc.SampleRate(),
			Channels:      enc.Channels(),
			CodecPrivate:  extra,
			FrameDuration: int64(enc.FrameSize()),
		}, logger)
		if err != nil {
			return err
		}
		p.writer = w
	}

	if cfg.Verify {
		v, err := newVerifier(enc)
		if err != nil {
			return err
		}
		defer v.Close()
		p.verifier = v
	}

	var ln net.Listener
	if cfg.Listen != "" {
		p.stream = stream.New(stream.Config{}, stream.StreamStart{
			Codec:       enc.Codec(),
			SampleRate:  enc.SampleRate(),
			Channels:    enc.Channels(),
			BitDepth:    streamenc.BitsPerSample,
			CodecHeader: extra,
		}, logger)

		ln, err = net.Listen("tcp", cfg.Listen)
		if err != nil {
			return fmt.Errorf("stream listen %s: %w", cfg.Listen, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(gctx)
	defer stopServing()

	g.Go(func() error {
		defer stopServing()
		return p.run(gctx, src)
	})

	if p.stream != nil {
		g.Go(func() error {
			return p.stream.Serve(serveCtx, ln)
		})

		if cfg.MDNS {
			g.Go(func() error {
				return discovery.Advertise(serveCtx, discovery.Config{
					Port:       ln.Addr().(*net.TCPAddr).Port,
					Path:       stream.Path,
					Codec:      enc.Codec(),
					SampleRate: enc.SampleRate(),
					Channels:   enc.Channels(),
				}, logger)
			})
		}
	}

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			mln, err := net.Listen("tcp", cfg.MetricsAddr)
			if err != nil {
				return fmt.Errorf("metrics listen %s: %w", cfg.MetricsAddr, err)
			}
			logger.Info("metrics listening", zap.String("addr", mln.Addr().String()))
			return serveMetrics(serveCtx, mln)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	st := enc.Stats()
	logger.Info("encode finished",
		zap.Int64("frames_in", st.FramesIn),
		zap.Int64("packets_out", st.PacketsOut),
		zap.Int64("bytes_out", st.BytesOut),
		zap.Int64("backpressure", st.Backpressure))
	if p.verifier != nil {
		logger.Info("verified packets", zap.Int64("packets", p.verifier.packets), zap.Int64("frames", p.verifier.frames))
	}
	return nil
}

// openOutput returns nil for an empty path
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	switch path {
	case "":
		return nil, func() {}, nil
	case "-":
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// serveMetrics serves /metrics on ln until ctx is done
func serveMetrics(ctx context.Context, ln net.Listener) error {
	handler := http.NewServeMux()
	handler.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: handler}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type pipeline struct {
	enc      *streamenc.Encoder
	logger   *zap.Logger
	realtime bool

	writer   mux.Writer
	stream   *stream.Server
	verifier *verifier
}

// run submits the source frame by frame, draining after each frame, then
// flushes the tail. Cancellation stops reading but still finalizes output.
func (p *pipeline) run(ctx context.Context, src io.Reader) error {
	frame := make([]byte, p.enc.FrameBytes())
	started := time.Now()
	var pts int64

	for ctx.Err() == nil {
		n, err := io.ReadFull(src, frame)
		if err == io.EOF {
			break
		}
		last := false
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// Pad the final partial frame with silence
			clear(frame[n:])
			last = true
		} else if err != nil {
			return fmt.Errorf("read source: %w", err)
		}

		if err := p.submit(frame, pts); err != nil {
			return err
		}
		pts += int64(p.enc.FrameSize())

		if p.realtime {
			ahead := time.Until(started.Add(audioDuration(pts, p.enc.SampleRate())))
			if ahead > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(ahead):
				}
			}
		}
		if last {
			break
		}
	}

	if err := p.enc.Flush(); err != nil {
		return err
	}
	if _, err := p.enc.Drain(p.emit); err != nil {
		return err
	}
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			return fmt.Errorf("finalize container: %w", err)
		}
	}
	return nil
}

// submit pushes one frame, draining once and retrying on backpressure
func (p *pipeline) submit(frame []byte, pts int64) error {
	for attempt := 0; attempt < 2; attempt++ {
		status, err := p.enc.ProcessInput(frame, pts)
		if err != nil {
			return err
		}
		if _, err := p.enc.Drain(p.emit); err != nil {
			return err
		}
		if status == streamenc.Accepted {
			return nil
		}
	}
	return fmt.Errorf("encoder refused frame at pts %d after draining", pts)
}

func (p *pipeline) emit(pkt streamenc.Packet) error {
	if p.verifier != nil {
		if err := p.verifier.check(pkt); err != nil {
			return err
		}
	}
	if p.writer != nil {
		if err := p.writer.WritePacket(pkt); err != nil {
			return fmt.Errorf("write packet: %w", err)
		}
	}
	if p.stream != nil {
		p.stream.Broadcast(pkt)
	}
	return nil
}

func audioDuration(frames int64, rate int) time.Duration {
	return streamenc.TimeBase{Num: 1, Den: rate}.Duration(frames)
}

// verifier decodes every packet and checks it covers Duration frames
type verifier struct {
	dec         decode.Decoder
	channels    int
	sessionRate int
	decodeRate  int

	packets int64
	frames  int64
}

func newVerifier(enc *streamenc.Encoder) (*verifier, error) {
	rate := enc.SampleRate()
	if enc.Codec() == "opus" && !encode.IsOpusRate(rate) {
		rate = codec.OpusResampleRate
	}

	dec, err := decode.ForFormat(audio.Format{
		Codec:      enc.Codec(),
		SampleRate: rate,
		Channels:   enc.Channels(),
		BitDepth:   streamenc.BitsPerSample,
	})
	if err != nil {
		return nil, err
	}
	return &verifier{dec: dec, channels: enc.Channels(), sessionRate: enc.SampleRate(), decodeRate: rate}, nil
}

func (v *verifier) check(pkt streamenc.Packet) error {
	pcm, err := v.dec.Decode(pkt.Data)
	if err != nil {
		return fmt.Errorf("verify packet at pts %d: %w", pkt.PTS, err)
	}

	got := int64(len(pcm) / v.channels)
	want := pkt.Duration * int64(v.decodeRate) / int64(v.sessionRate)
	if got != want {
		return fmt.Errorf("verify packet at pts %d: decoded %d frames, want %d", pkt.PTS, got, want)
	}
	v.packets++
	v.frames += got
	return nil
}

func (v *verifier) Close() error {
	return v.dec.Close()
}
