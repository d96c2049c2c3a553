package loop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/havud29/asyncdep/core"
)

// FrameObserver is told how long each frame took and what it left behind.
type FrameObserver interface {
	ObserveFrame(d time.Duration, s Stats)
}

type nopFrameObserver struct{}

func (nopFrameObserver) ObserveFrame(time.Duration, Stats) {}

// Stats is the state of the runtime at the end of the last frame.
type Stats struct {
	Frame        uint64           `json:"frame"`
	Members      int              `json:"members"`
	Snapshot     int              `json:"snapshot"`
	Capacity     int              `json:"capacity"`
	Ticked       int              `json:"ticked"`
	LateTicked   int              `json:"lateTicked"`
	Outstanding  int              `json:"outstanding"`
	Registered   int              `json:"registered"`
	Changes      uint64           `json:"changes"`
	Dependencies core.Diagnostics `json:"dependencies"`
}

// Host drives a Runtime frame by frame. Once started, the runtime belongs to
// the loop goroutine: other goroutines reach it through Do.
type Host struct {
	rt       *core.Runtime
	log      *slog.Logger
	interval time.Duration
	observer FrameObserver

	mu    sync.Mutex
	queue []func(*core.Runtime)

	// owned by the goroutine running Step
	frame       uint64
	changes     uint64
	diagChanges uint64
	diag        core.Diagnostics
	unsubscribe func()

	stats atomic.Pointer[Stats]

	cancel context.CancelFunc
	done   chan struct{}
}

// NewHost creates a host ticking rt frameRate times per second.
func NewHost(rt *core.Runtime, frameRate int, obs FrameObserver) *Host {
	if frameRate < 1 {
		frameRate = 60
	}
	if obs == nil {
		obs = nopFrameObserver{}
	}
	h := &Host{
		rt:       rt,
		log:      rt.Logger(),
		interval: time.Second / time.Duration(frameRate),
		observer: obs,
	}
	h.diag = rt.Container().Snapshot()
	h.unsubscribe = rt.Container().Subscribe(func() { h.changes++ })
	h.stats.Store(&Stats{Dependencies: h.diag})
	return h
}

// Interval is the time between frames.
func (h *Host) Interval() time.Duration { return h.interval }

// Do queues fn to run on the loop goroutine at the start of the next frame.
// It is the only safe way to touch the runtime from other goroutines.
func (h *Host) Do(fn func(rt *core.Runtime)) {
	h.mu.Lock()
	h.queue = append(h.queue, fn)
	h.mu.Unlock()
}

func (h *Host) drain() []func(*core.Runtime) {
	h.mu.Lock()
	defer h.mu.Unlock()
	q := h.queue
	h.queue = nil
	return q
}

// Step runs one frame: queued work, the tick phase and the late tick phase.
// A panic inside the frame is logged and the frame abandoned.
func (h *Host) Step(delta time.Duration) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("frame panic", "frame", h.frame, "error", rec)
		}
		h.observer.ObserveFrame(time.Since(start), *h.stats.Load())
	}()

	h.frame++
	f := core.Frame{Number: h.frame, Delta: delta}
	for _, fn := range h.drain() {
		fn(h.rt)
	}
	ticked := h.rt.TickAll(f)
	late := h.rt.LateTickAll(f)
	h.publish(ticked, late)
}

func (h *Host) publish(ticked, late int) {
	c := h.rt.Container()
	s := h.rt.Scheduler()
	if h.changes != h.diagChanges || c.Outstanding() != len(h.diag.Outstanding) || c.Registered() != len(h.diag.Registered) {
		h.diag = c.Snapshot()
		h.diagChanges = h.changes
	}
	h.stats.Store(&Stats{
		Frame:        h.frame,
		Members:      s.Members(),
		Snapshot:     s.SnapshotLen(),
		Capacity:     s.Capacity(),
		Ticked:       ticked,
		LateTicked:   late,
		Outstanding:  c.Outstanding(),
		Registered:   c.Registered(),
		Changes:      h.changes,
		Dependencies: h.diag,
	})
}

// Stats returns the figures published by the last frame. Safe for concurrent
// use.
func (h *Host) Stats() Stats {
	return *h.stats.Load()
}

// Run steps the runtime on a ticker until ctx is done.
func (h *Host) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			delta := t.Sub(last)
			last = t
			h.Step(delta)
		}
	}
}

// Start runs the loop on its own goroutine.
func (h *Host) Start(ctx context.Context) error {
	if h.done != nil {
		return errors.New("loop: already started")
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		h.log.Info("frame loop starting", "interval", h.interval.String())
		h.Run(ctx)
		h.log.Info("frame loop stopped", "frames", h.frame)
	}()
	return nil
}

// Stop ends the loop and waits for the current frame to finish.
func (h *Host) Stop(ctx context.Context) error {
	if h.done == nil {
		return nil
	}
	h.cancel()
	select {
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	h.unsubscribe()
	return nil
}
