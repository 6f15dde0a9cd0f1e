package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHazardSurge  BookmarkType = "hazard_surge"
	BookmarkExtinction   BookmarkType = "extinction"
	BookmarkPoolDrained  BookmarkType = "pool_drained"
	BookmarkLiquidSettle BookmarkType = "liquid_settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentParticlePeak int
	lastCreatures      int
	settledWindows     int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settle detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkHazardSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkExtinction(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPoolDrained(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	bd.lastCreatures = stats.Creatures
	if stats.Particles > bd.recentParticlePeak {
		bd.recentParticlePeak = stats.Particles
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkHazardSurge fires when damage dealt in a window is more than twice the
// rolling average.
func (bd *BookmarkDetector) checkHazardSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Damage
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.Damage > avg*2.0 && stats.HazardContacts >= 3 {
		return &Bookmark{
			Type:        BookmarkHazardSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Hazard damage %.1f is %.1fx average (%.1f)", stats.Damage, stats.Damage/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if bd.lastCreatures == 0 || stats.Creatures > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Last of %d creatures removed", bd.lastCreatures),
	}
}

func (bd *BookmarkDetector) checkPoolDrained(stats WindowStats) *Bookmark {
	if bd.recentParticlePeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Particles)/float64(bd.recentParticlePeak)
	if drop > 0.5 && stats.Particles < bd.recentParticlePeak-20 {
		oldPeak := bd.recentParticlePeak
		bd.recentParticlePeak = stats.Particles

		return &Bookmark{
			Type:        BookmarkPoolDrained,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Liquid fell %.0f%% from peak %d to %d particles", drop*100, oldPeak, stats.Particles),
		}
	}
	return nil
}

// checkSettled fires once when the particle count has held steady for five
// consecutive windows.
func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Particles == 0 {
		bd.settledWindows = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Particles)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Particles) - mean
		variance += d * d
	}
	variance /= 4

	if mean > 0 && variance/(mean*mean) < 0.0025 { // CV < 5%
		bd.settledWindows++
	} else {
		bd.settledWindows = 0
	}

	if bd.settledWindows == 5 {
		return &Bookmark{
			Type:        BookmarkLiquidSettle,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Liquid steady at %d particles over 5+ windows", stats.Particles),
		}
	}
	return nil
}
