package core

import "time"

// Frame describes the frame being dispatched.
type Frame struct {
	Number uint64
	Delta  time.Duration
}

// Optional lifecycle hooks. A behaviour implements only the ones it needs.

// Attacher runs when the behaviour is attached, before its dependencies are
// requested.
type Attacher interface {
	OnAttach()
}

// Starter runs once before the first frame after attach.
type Starter interface {
	OnStart()
}

// DependenciesFilledHandler runs once, when the last dependency is filled.
type DependenciesFilledHandler interface {
	OnDependenciesFilled()
}

// Ticker receives a call every frame while the behaviour is tick eligible.
// Implementing Ticker or LateTicker puts the type in the scheduler.
type Ticker interface {
	Tick(f Frame)
}

// LateTicker is Ticker for the late phase, after every Tick of the frame.
type LateTicker interface {
	LateTick(f Frame)
}

type Destroyer interface {
	OnDestroy()
}

type Enabler interface {
	OnEnable()
}

type Disabler interface {
	OnDisable()
}
