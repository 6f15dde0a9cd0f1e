package telemetry

import (
	"math"
	"testing"
)

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(3, "amorphous", 60)

	lt.RecordHazard(3, 2.5)
	lt.RecordHazard(3, 1.5)
	lt.RecordHazard(99, 10) // unknown entities are ignored
	lt.Update(3, 0.4, 1)
	lt.Update(3, 0.9, 0.5)
	lt.Update(3, 0.2, 0.5)
	lt.RecordDeath(3, 150)
	lt.RecordDeath(3, 160)

	s := lt.Remove(3, 180, 0.5)
	if s == nil {
		t.Fatal("Remove returned nil for a registered creature")
	}
	if s.HazardContacts != 2 || math.Abs(s.DamageTaken-4) > 1e-9 {
		t.Errorf("hazard stats = %d contacts, %f damage", s.HazardContacts, s.DamageTaken)
	}
	if s.PeakLifecycle != 0.9 {
		t.Errorf("peak lifecycle = %f, want 0.9", s.PeakLifecycle)
	}
	if math.Abs(s.Distance-2) > 1e-9 {
		t.Errorf("distance = %f, want 2", s.Distance)
	}
	if s.DeathTick != 150 {
		t.Errorf("death tick = %d, want the first recorded 150", s.DeathTick)
	}
	if math.Abs(s.SurvivalTimeSec-60) > 1e-9 {
		t.Errorf("survival = %f, want 60", s.SurvivalTimeSec)
	}
	if lt.Count() != 0 || lt.Remove(3, 200, 0.5) != nil {
		t.Error("removed creature should be forgotten")
	}
}
