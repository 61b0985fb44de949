// ABOUTME: Prometheus metrics for encoder sessions
// ABOUTME: Registered on the default registry and served by `streamenc encode --metrics-addr`
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	ActiveSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "streamenc_active_sessions",
		Help: "Number of initialized encoder sessions",
	}, []string{"codec"})
	StreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "streamenc_stream_clients",
		Help: "Number of connected websocket stream clients",
	})
)

// Counters
var (
	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamenc_input_frames_total",
		Help: "Total input frames accepted",
	}, []string{"codec"})
	PacketsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamenc_packets_total",
		Help: "Total encoded packets produced",
	}, []string{"codec"})
	BytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamenc_packet_bytes_total",
		Help: "Total encoded bytes produced",
	}, []string{"codec"})
	BackpressureTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamenc_backpressure_total",
		Help: "Input submissions refused because a block was already queued",
	}, []string{"codec"})
	EncodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamenc_encode_errors_total",
		Help: "Total fatal encode failures",
	}, []string{"codec"})
	StreamDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamenc_stream_dropped_total",
		Help: "Packets dropped for slow websocket clients",
	})
)
