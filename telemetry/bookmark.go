package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkImpactSpike    BookmarkType = "impact_spike"
	BookmarkCollisionStorm BookmarkType = "collision_storm"
	BookmarkRoomCleared    BookmarkType = "room_cleared"
	BookmarkSettled        BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `json:"type" csv:"type"`
	Tick        int64        `json:"tick" csv:"tick"`
	Description string       `json:"description" csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector flags windows worth a closer look.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	quietWindows int // consecutive windows with bodies but no static hits
	settledFired bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkImpactSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCollisionStorm(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if stats.RoomAdvances > 0 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkRoomCleared,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Left room %q", stats.Room),
		})
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
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

// checkImpactSpike fires when the hardest hit is more than twice the
// rolling average of hardest hits.
func (bd *BookmarkDetector) checkImpactSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += h.ImpactMax
	}
	avg := sum / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.ImpactMax > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkImpactSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Impact %.1f is %.1fx average (%.1f)", stats.ImpactMax, stats.ImpactMax/avg, avg),
		}
	}
	return nil
}

// checkCollisionStorm fires when one tick produced far more records than usual.
func (bd *BookmarkDetector) checkCollisionStorm(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.PeakRecords < 20 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.PeakRecords
	}
	avg := float64(total) / float64(len(history))

	if float64(stats.PeakRecords) > avg*3.0 {
		return &Bookmark{
			Type:        BookmarkCollisionStorm,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d records in one tick, average peak %.1f", stats.PeakRecords, avg),
		}
	}
	return nil
}

// checkSettled fires once when bodies exist but nothing has hit anything for
// a full history of windows.
func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Entities == 0 || stats.StaticHits > 0 || stats.TriggerHits > 0 {
		bd.quietWindows = 0
		bd.settledFired = false
		return nil
	}

	bd.quietWindows++
	if bd.quietWindows < bd.historySize || bd.settledFired {
		return nil
	}
	bd.settledFired = true
	return &Bookmark{
		Type:        BookmarkSettled,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("No collisions for %d windows", bd.quietWindows),
	}
}
