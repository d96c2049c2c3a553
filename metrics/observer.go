package metrics

import (
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/havud29/asyncdep/core"
	"github.com/havud29/asyncdep/loop"
)

const namespace = "asyncdep"

// Observer exports runtime and frame loop events as Prometheus metrics.
// It implements core.Observer and loop.FrameObserver.
type Observer struct {
	registrations *prometheus.CounterVec
	requests      prometheus.Counter
	readied       prometheus.Counter
	unloads       prometheus.Counter
	changes       prometheus.Counter
	outstanding   prometheus.Gauge
	registered    prometheus.Gauge
	members       prometheus.Gauge
	snapshotSize  prometheus.Gauge
	rebuilds      prometheus.Counter
	dispatched    *prometheus.CounterVec
	frames        prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "registrations_total",
			Help: "Singleton registrations applied, by capability type.",
		}, []string{"capability"}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "requests_total",
			Help: "Dependency requests made by behaviours.",
		}),
		readied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "behaviours_ready_total",
			Help: "Behaviours whose dependencies were all filled.",
		}),
		unloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "unloads_total",
			Help: "Behaviours unloaded from the container.",
		}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "dependency_changes_total",
			Help: "Dependencies-changed notifications.",
		}),
		outstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "outstanding_requesters",
			Help: "Behaviours waiting for at least one dependency.",
		}),
		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "registered_capabilities",
			Help: "Capabilities with a bound singleton.",
		}),
		members: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "tick_members",
			Help: "Behaviours whose type receives tick hooks.",
		}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "tick_snapshot_size",
			Help: "Behaviours in the current tick snapshot.",
		}),
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tick_snapshot_rebuilds_total",
			Help: "Tick snapshot rebuilds.",
		}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "dispatched_total",
			Help: "Tick hook calls, by phase.",
		}, []string{"phase"}),
		frames: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "frame_duration_seconds",
			Help:    "Wall time spent in each frame.",
			Buckets: []float64{.0005, .001, .002, .004, .008, .016, .033, .066, .1},
		}),
	}

	for _, c := range []prometheus.Collector{
		o.registrations, o.requests, o.readied, o.unloads, o.changes,
		o.outstanding, o.registered, o.members, o.snapshotSize, o.rebuilds, o.dispatched, o.frames,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) Registered(capability reflect.Type) {
	o.registrations.WithLabelValues(capability.String()).Inc()
}

func (o *Observer) Requested(core.Behaviour, int) { o.requests.Inc() }
func (o *Observer) Readied(core.Behaviour)        { o.readied.Inc() }
func (o *Observer) Unloaded(core.Behaviour)       { o.unloads.Inc() }

func (o *Observer) Changed(outstanding int) {
	o.changes.Inc()
	o.outstanding.Set(float64(outstanding))
}

func (o *Observer) SnapshotRebuilt(size int) {
	o.rebuilds.Inc()
	o.snapshotSize.Set(float64(size))
}

func (o *Observer) Dispatched(phase core.Phase, n int) {
	o.dispatched.WithLabelValues(string(phase)).Add(float64(n))
}

func (o *Observer) ObserveFrame(d time.Duration, s loop.Stats) {
	o.frames.Observe(d.Seconds())
	o.outstanding.Set(float64(s.Outstanding))
	o.registered.Set(float64(s.Registered))
	o.members.Set(float64(s.Members))
}
