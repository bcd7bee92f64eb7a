package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vibehut/huddle/types"
)

// PrometheusCollector implements types.MetricsCollector backed by
// Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions  *prometheus.CounterVec
	scalingEvents     *prometheus.CounterVec
	activeRooms       prometheus.Gauge
	roomSize          prometheus.Histogram
	notifyFailures    *prometheus.CounterVec
	discoveryRadius   prometheus.Histogram
	discoverySteps    prometheus.Histogram
	discoveryDegraded prometheus.Counter
	matchScore        prometheus.Histogram
	roomCompatibility prometheus.Histogram
	storeLatency      *prometheus.HistogramVec
	preconditionStale *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements
// MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "huddle" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "huddle"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "room_state_transitions_total",
			Help:      "Total room state transitions by from/to state.",
		}, []string{"from", "to"})

		p.scalingEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "scaling_events_total",
			Help:      "Total scaling events by type and reason.",
		}, []string{"type", "reason"})

		p.activeRooms = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "active_rooms",
			Help:      "Current number of active rooms.",
		})

		p.roomSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "room_size",
			Help:      "Room sizes observed after membership changes.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8},
		})

		p.notifyFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "controller",
			Name:      "notify_failures_total",
			Help:      "Total ignored notification delivery failures by kind.",
		}, []string{"kind"})

		p.discoveryRadius = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "discovery",
			Name:      "radius_km",
			Help:      "Final discovery radius in kilometers.",
			Buckets:   []float64{5, 10, 20, 35, 50, 75, 100},
		})

		p.discoverySteps = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "discovery",
			Name:      "expansion_steps",
			Help:      "Radius expansion iterations per discovery.",
			Buckets:   []float64{0, 1, 2, 4, 8, 12, 16, 20},
		})

		p.discoveryDegraded = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "discovery",
			Name:      "degraded_total",
			Help:      "Discoveries that degraded to the minimum radius after a query failure.",
		})

		p.matchScore = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "scoring",
			Name:      "match_score",
			Help:      "User-to-user compatibility scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		})

		p.roomCompatibility = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "scoring",
			Name:      "room_compatibility",
			Help:      "Room-to-room compatibility scores evaluated for merges.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		})

		p.storeLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Latency of external store round-trips by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		}, []string{"op"})

		p.preconditionStale = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "precondition_stale_total",
			Help:      "Writes abandoned because the room precondition went stale.",
		}, []string{"op"})

		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.scalingEvents)
		p.reg.MustRegister(p.activeRooms)
		p.reg.MustRegister(p.roomSize)
		p.reg.MustRegister(p.notifyFailures)
		p.reg.MustRegister(p.discoveryRadius)
		p.reg.MustRegister(p.discoverySteps)
		p.reg.MustRegister(p.discoveryDegraded)
		p.reg.MustRegister(p.matchScore)
		p.reg.MustRegister(p.roomCompatibility)
		p.reg.MustRegister(p.storeLatency)
		p.reg.MustRegister(p.preconditionStale)
	})
}

// RecordRoomStateTransition increments the transition counter.
func (p *PrometheusCollector) RecordRoomStateTransition(from, to types.RoomState) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordScalingEvent increments the scaling event counter.
func (p *PrometheusCollector) RecordScalingEvent(eventType types.EventType, reason string) {
	p.ensureRegistered()
	p.scalingEvents.WithLabelValues(string(eventType), reason).Inc()
}

// RecordActiveRooms sets the active rooms gauge.
func (p *PrometheusCollector) RecordActiveRooms(count int) {
	p.ensureRegistered()
	p.activeRooms.Set(float64(count))
}

// RecordRoomSize observes a room size.
func (p *PrometheusCollector) RecordRoomSize(size int) {
	p.ensureRegistered()
	p.roomSize.Observe(float64(size))
}

// RecordNotifyFailure increments the notification failure counter.
func (p *PrometheusCollector) RecordNotifyFailure(kind types.NotifyKind) {
	p.ensureRegistered()
	p.notifyFailures.WithLabelValues(string(kind)).Inc()
}

// RecordDiscoveryRadius observes a final discovery radius.
func (p *PrometheusCollector) RecordDiscoveryRadius(radiusKm float64) {
	p.ensureRegistered()
	p.discoveryRadius.Observe(radiusKm)
}

// RecordDiscoverySteps observes a discovery's expansion step count.
func (p *PrometheusCollector) RecordDiscoverySteps(steps int) {
	p.ensureRegistered()
	p.discoverySteps.Observe(float64(steps))
}

// RecordDiscoveryDegraded increments the degraded discovery counter.
func (p *PrometheusCollector) RecordDiscoveryDegraded() {
	p.ensureRegistered()
	p.discoveryDegraded.Inc()
}

// RecordMatchScore observes a match score.
func (p *PrometheusCollector) RecordMatchScore(score float64) {
	p.ensureRegistered()
	p.matchScore.Observe(score)
}

// RecordRoomCompatibility observes a room compatibility score.
func (p *PrometheusCollector) RecordRoomCompatibility(score float64) {
	p.ensureRegistered()
	p.roomCompatibility.Observe(score)
}

// RecordStoreOperationDuration observes a store round-trip latency.
func (p *PrometheusCollector) RecordStoreOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.storeLatency.WithLabelValues(operation).Observe(duration)
}

// RecordPreconditionStale increments the stale precondition counter.
func (p *PrometheusCollector) RecordPreconditionStale(operation string) {
	p.ensureRegistered()
	p.preconditionStale.WithLabelValues(operation).Inc()
}
