package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ricq"

var (
	Registry = prometheus.NewRegistry()

	FramesIn = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "net", Name: "frames_in_total",
		Help: "Inbound frames read from the server stream.",
	})
	FramesOut = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "net", Name: "frames_out_total",
		Help: "Outbound frames written to the server stream.",
	})
	DecodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "net", Name: "decode_failures_total",
		Help: "Inbound frames the engine failed to decode.",
	})
	Disconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "net", Name: "disconnects_total",
		Help: "Network loop exits by reason.",
	}, []string{"reason"})

	DedupLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "push", Name: "dedup_lookups_total",
		Help: "Dedup cache lookups by cache and result.",
	}, []string{"cache", "result"})
	DedupFlushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "push", Name: "dedup_flushes_total",
		Help: "Wholesale dedup cache flushes.",
	}, []string{"cache"})
	Events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "push", Name: "events_total",
		Help: "Events delivered to the handler.",
	}, []string{"event"})
)

func init() {
	Registry.MustRegister(FramesIn, FramesOut, DecodeFailures, Disconnects, DedupLookups, DedupFlushes, Events)
}

// Handler 暴露指标，由调用方挂载到自己的HTTP服务上
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
