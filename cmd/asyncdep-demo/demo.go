package main

import (
	"context"
	"time"

	"github.com/havud29/asyncdep/core"
	"github.com/havud29/asyncdep/inject"
	"github.com/havud29/asyncdep/loop"
)

// Board is a service with no dependencies. It publishes itself once ready.
type Board struct {
	core.Base
	Width, Height int
}

func (b *Board) OnDependenciesFilled() {
	if err := core.Register(b.Container(), b); err != nil {
		b.Runtime().Logger().Error("register board", "error", err)
	}
}

// Referee needs the board and then publishes itself, from inside the board's
// registration.
type Referee struct {
	core.Base
	board *Board
	moves int
}

func (*Referee) InjectSlots() []inject.Slot {
	return []inject.Slot{
		inject.Field("board", func(r *Referee, b *Board) { r.board = b }),
	}
}

func (r *Referee) OnDependenciesFilled() {
	if err := core.Register(r.Container(), r); err != nil {
		r.Runtime().Logger().Error("register referee", "error", err)
	}
}

func (r *Referee) Moved() { r.moves++ }

// Walker crosses the board once it has both services.
type Walker struct {
	core.Base
	board   *Board
	referee *Referee
	x, y    int
}

func (*Walker) InjectSlots() []inject.Slot {
	return []inject.Slot{
		inject.Field("board", func(w *Walker, b *Board) { w.board = b }),
		inject.Field("referee", func(w *Walker, r *Referee) { w.referee = r }),
	}
}

func (w *Walker) Tick(core.Frame) {
	w.x = (w.x + 1) % w.board.Width
	if w.x == 0 {
		w.y = (w.y + 1) % w.board.Height
	}
	w.referee.Moved()
}

func (w *Walker) LateTick(f core.Frame) {
	if f.Number%300 == 0 {
		w.Runtime().Logger().Info("walker position",
			"walker", w.ID().String(), "x", w.x, "y", w.y, "moves", w.referee.moves)
	}
}

const (
	demoName    = "demo"
	walkerCount = 3
	boardDelay  = 2 * time.Second
)

// demoModule attaches walkers and the referee straight away and the board a
// little later, so the walkers sit in the outstanding set until it arrives.
func demoModule() core.Module { return &demo{} }

type demo struct {
	host  *loop.Host
	timer *time.Timer
}

func (d *demo) Name() string        { return demoName }
func (d *demo) DependsOn() []string { return []string{loop.Name} }

func (d *demo) Configure(rt *core.Runtime) error {
	d.host = loop.FromRuntime(rt)
	for range walkerCount {
		if err := rt.Attach(&Walker{}); err != nil {
			return err
		}
	}
	return rt.Attach(&Referee{})
}

func (d *demo) Start(context.Context, *core.Runtime) error {
	d.timer = time.AfterFunc(boardDelay, func() {
		d.host.Do(func(rt *core.Runtime) {
			if err := rt.Attach(&Board{Width: 16, Height: 9}); err != nil {
				rt.Logger().Error("attach board", "error", err)
			}
		})
	})
	return nil
}

func (d *demo) Stop(context.Context, *core.Runtime) error {
	d.timer.Stop()
	return nil
}
