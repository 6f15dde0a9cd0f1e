package lifecycle

import (
	"fmt"

	"github.com/ShamylZakariya/Surfacer-sub000/geom"
)

// ModeKind selects who owns the lifecycle scalar.
type ModeKind uint8

const (
	// KindExternallyDriven means the owner sets the scalar every tick.
	KindExternallyDriven ModeKind = iota
	// KindSelfTimed means the scalar ramps from age and time since finish.
	KindSelfTimed
)

func (k ModeKind) String() string {
	switch k {
	case KindExternallyDriven:
		return "external"
	case KindSelfTimed:
		return "self_timed"
	}
	return fmt.Sprintf("ModeKind(%d)", k)
}

// Mode is the tagged lifecycle choice. Intro and Extro are only meaningful for
// KindSelfTimed; a zero Intro means born fully grown and a zero Extro means
// instant death on Finish.
type Mode struct {
	Kind  ModeKind
	Intro float64
	Extro float64
}

// ExternallyDriven returns a mode whose scalar is set by the owner.
func ExternallyDriven() Mode {
	return Mode{Kind: KindExternallyDriven}
}

// SelfTimed returns a mode that grows over intro seconds and fades over extro
// seconds after Finish.
func SelfTimed(intro, extro float64) Mode {
	return Mode{Kind: KindSelfTimed, Intro: intro, Extro: extro}
}

// Clock tracks age and produces the lifecycle scalar in [0, 1].
type Clock struct {
	mode       Mode
	age        float64
	finished   bool
	finishedAt float64
	external   float64
}

// NewClock returns a clock at age zero. Externally driven clocks start fully
// grown until the owner says otherwise.
func NewClock(mode Mode) *Clock {
	return &Clock{mode: mode, external: 1}
}

// Mode returns the clock's mode.
func (c *Clock) Mode() Mode { return c.mode }

// Age returns seconds since the clock started.
func (c *Clock) Age() float64 { return c.age }

// Advance moves the clock forward by dt seconds.
func (c *Clock) Advance(dt float64) {
	c.age += dt
}

// Set stores the externally driven value. It is ignored by self-timed clocks.
func (c *Clock) Set(v float64) {
	if c.mode.Kind != KindExternallyDriven {
		return
	}
	c.external = geom.Saturate(v)
}

// Finish marks the owner as finished; self-timed clocks start fading.
func (c *Clock) Finish() {
	if c.finished {
		return
	}
	c.finished = true
	c.finishedAt = c.age
}

// Finished reports whether Finish has been called.
func (c *Clock) Finished() bool { return c.finished }

// Value returns the current lifecycle scalar.
func (c *Clock) Value() float64 {
	if c.mode.Kind == KindExternallyDriven {
		return c.external
	}

	grow := 1.0
	if c.mode.Intro > 0 {
		grow = geom.Saturate(c.age / c.mode.Intro)
	}

	fade := 1.0
	if c.finished {
		if c.mode.Extro > 0 {
			fade = 1 - geom.Saturate((c.age-c.finishedAt)/c.mode.Extro)
		} else {
			fade = 0
		}
	}

	return grow * fade
}

// Done reports whether the owner can be removed: finished and, when
// self-timed, fully faded.
func (c *Clock) Done() bool {
	if !c.finished {
		return false
	}
	if c.mode.Kind == KindExternallyDriven {
		return true
	}
	return c.Value() <= 0
}
