package systems

import "log/slog"

// Time tracks real elapsed time. Systems that want scaled time combine it
// with BulletTime.
type Time struct {
	Delta   float64 // real seconds since the previous tick
	Elapsed float64
	Tick    int64
}

// Advance moves the clock forward by one tick of delta seconds.
func (t *Time) Advance(delta float64) {
	if delta < 0 {
		delta = 0
	}
	t.Delta = delta
	t.Elapsed += delta
	t.Tick++
}

// Scaled returns this tick's delta multiplied by the bullet time factor.
func (t *Time) Scaled(bt *BulletTime) float64 {
	return t.Delta * bt.Factor()
}

// BulletTimeMode selects how fast simulated time passes.
type BulletTimeMode uint8

const (
	BulletTimeInactive BulletTimeMode = iota
	BulletTimeActive
	BulletTimeCustom
)

// DefaultBulletTimeFactor is the slowdown used while BulletTimeActive.
const DefaultBulletTimeFactor = 0.2

// BulletTime is the global time dilation. Gameplay code writes it, every
// time-scaled system reads it.
type BulletTime struct {
	Mode         BulletTimeMode
	Custom       float64 // factor for BulletTimeCustom
	ActiveFactor float64 // factor for BulletTimeActive, DefaultBulletTimeFactor when zero
}

// Factor returns the multiplier applied to real time.
func (b *BulletTime) Factor() float64 {
	switch b.Mode {
	case BulletTimeInactive:
		return 1
	case BulletTimeActive:
		if b.ActiveFactor > 0 {
			return b.ActiveFactor
		}
		return DefaultBulletTimeFactor
	case BulletTimeCustom:
		return b.Custom
	default:
		return 1
	}
}

// SetInactive restores real time.
func (b *BulletTime) SetInactive() {
	b.Mode = BulletTimeInactive
}

// SetActive switches to the standard slowdown.
func (b *BulletTime) SetActive() {
	b.Mode = BulletTimeActive
}

// SetCustom switches to an arbitrary factor. Negative factors are clamped to zero.
func (b *BulletTime) SetCustom(factor float64) {
	if factor < 0 {
		factor = 0
	}
	b.Mode = BulletTimeCustom
	b.Custom = factor
}

// LogValue implements slog.LogValuer.
func (b BulletTime) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mode", b.Mode.String()),
		slog.Float64("factor", b.Factor()),
	)
}

// String returns the mode name.
func (m BulletTimeMode) String() string {
	switch m {
	case BulletTimeInactive:
		return "inactive"
	case BulletTimeActive:
		return "active"
	case BulletTimeCustom:
		return "custom"
	default:
		return "unknown"
	}
}
