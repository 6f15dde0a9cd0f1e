package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_HazardSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 300), Damage: 5, HazardContacts: 5})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 1500, Damage: 40, HazardContacts: 30})
	if !hasBookmark(bms, BookmarkHazardSurge) {
		t.Error("expected hazard_surge bookmark")
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{WindowEndTick: 300, Creatures: 2})

	if bms := bd.Check(WindowStats{WindowEndTick: 600, Creatures: 1}); hasBookmark(bms, BookmarkExtinction) {
		t.Error("extinction fired with a creature still alive")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 900, Creatures: 0}); !hasBookmark(bms, BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 1200, Creatures: 0}); hasBookmark(bms, BookmarkExtinction) {
		t.Error("extinction should fire once")
	}
}

func TestBookmarkDetector_PoolDrained(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 300), Particles: 200})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 1500, Particles: 60})
	if !hasBookmark(bms, BookmarkPoolDrained) {
		t.Error("expected pool_drained bookmark")
	}

	// The peak resets after a drain, so a further small dip is quiet.
	bms = bd.Check(WindowStats{WindowEndTick: 1800, Particles: 50})
	if hasBookmark(bms, BookmarkPoolDrained) {
		t.Error("pool_drained should not refire against the old peak")
	}
}

func TestBookmarkDetector_LiquidSettled(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		bms := bd.Check(WindowStats{WindowEndTick: int32(i * 300), Particles: 120})
		if hasBookmark(bms, BookmarkLiquidSettle) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("liquid_settled fired %d times, want exactly 1", fired)
	}
}
