package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesDecoded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "droidlink",
			Subsystem: "protocol",
			Name:      "frames_decoded_total",
			Help:      "Complete frames decoded from the inbound stream.",
		},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "droidlink",
			Subsystem: "protocol",
			Name:      "frame_errors_total",
			Help:      "Frames discarded by error kind.",
		},
		[]string{"kind"},
	)
	commandsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "droidlink",
			Subsystem: "correlator",
			Name:      "commands_in_flight",
			Help:      "Pending requests awaiting a response.",
		},
	)
	commandTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "droidlink",
			Subsystem: "correlator",
			Name:      "command_timeouts_total",
			Help:      "Requests that expired without a matching response.",
		},
	)
	notificationsDispatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "droidlink",
			Subsystem: "dispatch",
			Name:      "notifications_total",
			Help:      "Asynchronous notifications routed to listeners.",
		},
	)
	chunksWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "droidlink",
			Subsystem: "transport",
			Name:      "chunks_written_total",
			Help:      "Outbound transport chunks submitted to the writer.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesDecoded, frameErrors, commandsInFlight,
			commandTimeouts, notificationsDispatched, chunksWritten,
		)
	})
}

func RecordFrameDecoded() {
	RegisterMetrics()
	framesDecoded.Inc()
}

func RecordFrameError(kind string) {
	RegisterMetrics()
	frameErrors.WithLabelValues(kind).Inc()
}

func RecordCommandStarted() {
	RegisterMetrics()
	commandsInFlight.Inc()
}

func RecordCommandFinished() {
	RegisterMetrics()
	commandsInFlight.Dec()
}

func RecordCommandTimeout() {
	RegisterMetrics()
	commandTimeouts.Inc()
}

func RecordNotification() {
	RegisterMetrics()
	notificationsDispatched.Inc()
}

func RecordChunkWritten() {
	RegisterMetrics()
	chunksWritten.Inc()
}
