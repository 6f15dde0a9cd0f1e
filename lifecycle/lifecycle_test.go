package lifecycle

import (
	"math"
	"testing"
)

func TestRadiusForAgeEndpoints(t *testing.T) {
	tests := []struct {
		name                           string
		lifespan, entrance, exit, base float64
	}{
		{"short ramps", 10, 1, 1, 2},
		{"long ramps", 10, 4, 5, 0.5},
		{"unit", 1, 0.25, 0.25, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r0 := RadiusForAge(0, tc.lifespan, tc.entrance, tc.exit, tc.base)
			if math.Abs(r0-0.5*tc.base) > 1e-9 {
				t.Errorf("radius at age 0 = %f, want %f", r0, 0.5*tc.base)
			}

			rEnd := RadiusForAge(tc.lifespan-1e-9, tc.lifespan, tc.entrance, tc.exit, tc.base)
			if math.Abs(rEnd-0.01*tc.base) > 1e-6 {
				t.Errorf("radius near lifespan = %f, want %f", rEnd, 0.01*tc.base)
			}

			mid := tc.entrance + (tc.lifespan-tc.exit-tc.entrance)/2
			if rMid := RadiusForAge(mid, tc.lifespan, tc.entrance, tc.exit, tc.base); rMid != tc.base {
				t.Errorf("radius mid-life = %f, want %f", rMid, tc.base)
			}
		})
	}
}

func TestRadiusForAgeContinuous(t *testing.T) {
	const (
		lifespan = 8.0
		entrance = 1.5
		exit     = 2.0
		base     = 3.0
		steps    = 20000
	)

	// Largest slope is base/entrance or base/exit; bound jumps accordingly.
	dAge := lifespan * 1.2 / steps
	maxJump := base/math.Min(entrance, exit)*dAge + 1e-9

	prev := RadiusForAge(0, lifespan, entrance, exit, base)
	for i := 1; i <= steps; i++ {
		age := float64(i) * dAge
		r := RadiusForAge(age, lifespan, entrance, exit, base)
		if math.Abs(r-prev) > maxJump {
			t.Fatalf("discontinuity at age %f: %f -> %f", age, prev, r)
		}
		if r <= 0 || r > base {
			t.Fatalf("radius %f at age %f outside (0, %f]", r, age, base)
		}
		prev = r
	}
}

func TestRadiusForAgeBoundaries(t *testing.T) {
	const lifespan, entrance, exit, base = 10.0, 2.0, 3.0, 1.0

	if r := RadiusForAge(entrance, lifespan, entrance, exit, base); r != base {
		t.Errorf("radius at end of entrance = %f, want %f", r, base)
	}
	if r := RadiusForAge(lifespan-exit, lifespan, entrance, exit, base); r != base {
		t.Errorf("radius at start of exit = %f, want %f", r, base)
	}
	if r := RadiusForAge(0.5, lifespan, 0, exit, base); r != base {
		t.Errorf("zero entrance should give full radius, got %f", r)
	}
}

func TestRadiusForAgeImmortal(t *testing.T) {
	if r := RadiusForAge(1e6, 0, 1, 1, 2); r != 2 {
		t.Errorf("immortal particle radius = %f, want 2", r)
	}
	if Expired(1e6, 0) {
		t.Error("zero lifespan must never expire")
	}
	if !Expired(10.1, 10) {
		t.Error("age past lifespan should be expired")
	}
}

func TestClockSelfTimed(t *testing.T) {
	c := NewClock(SelfTimed(2, 4))

	if v := c.Value(); v != 0 {
		t.Errorf("newborn value = %f, want 0", v)
	}

	c.Advance(1)
	if v := c.Value(); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("value mid-intro = %f, want 0.5", v)
	}

	c.Advance(5)
	if v := c.Value(); v != 1 {
		t.Errorf("grown value = %f, want 1", v)
	}

	c.Finish()
	c.Advance(1)
	if v := c.Value(); math.Abs(v-0.75) > 1e-9 {
		t.Errorf("value during extro = %f, want 0.75", v)
	}
	if c.Done() {
		t.Error("clock should not be done mid-fade")
	}

	c.Advance(3)
	if !c.Done() {
		t.Errorf("clock should be done after extro, value %f", c.Value())
	}
}

func TestClockInstantDeath(t *testing.T) {
	c := NewClock(SelfTimed(1, 0))
	c.Advance(2)
	if c.Value() != 1 {
		t.Fatalf("expected grown creature, got %f", c.Value())
	}
	c.Finish()
	if c.Value() != 0 || !c.Done() {
		t.Errorf("zero extro should die instantly, value %f done %v", c.Value(), c.Done())
	}
}

func TestClockExternallyDriven(t *testing.T) {
	c := NewClock(ExternallyDriven())
	if c.Value() != 1 {
		t.Errorf("external clock default = %f, want 1", c.Value())
	}

	c.Set(0.3)
	c.Advance(100)
	if c.Value() != 0.3 {
		t.Errorf("external value = %f, want 0.3", c.Value())
	}

	c.Set(4)
	if c.Value() != 1 {
		t.Errorf("external value should saturate, got %f", c.Value())
	}

	timed := NewClock(SelfTimed(1, 1))
	timed.Set(1)
	if timed.Value() != 0 {
		t.Errorf("Set must not affect self-timed clocks, got %f", timed.Value())
	}
}
