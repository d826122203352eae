package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// StaticCollisionRecord describes one receiver hitting one provider.
type StaticCollisionRecord struct {
	Pos          r2.Vec
	Provider     ecs.Entity
	ProviderKind StaticProviderKind
	Receiver     ecs.Entity
	ReceiverKind StaticReceiverKind
	// Receiver velocity split against the surface at impact, before the response.
	RxPerp r2.Vec
	RxPar  r2.Vec
}

// TriggerCollisionRecord describes Self overlapping Other.
type TriggerCollisionRecord struct {
	Pos       r2.Vec
	Self      ecs.Entity
	Other     ecs.Entity
	OtherKind TriggerKind
}

// StaticCollisionID is a handle into the CollisionRoot. It is only valid
// during the tick that produced it.
type StaticCollisionID struct {
	gen   uint32
	index uint32
}

// TriggerCollisionID is a handle into the CollisionRoot. It is only valid
// during the tick that produced it.
type TriggerCollisionID struct {
	gen   uint32
	index uint32
}

// CollisionRoot owns every collision record produced in a tick. Reset drops
// them all at once; handles from earlier ticks stop resolving.
type CollisionRoot struct {
	gen     uint32
	statics []StaticCollisionRecord
	trigs   []TriggerCollisionRecord
}

// NewCollisionRoot creates an empty root.
func NewCollisionRoot() *CollisionRoot {
	return &CollisionRoot{gen: 1}
}

// Reset invalidates all records and handles.
func (c *CollisionRoot) Reset() {
	c.gen++
	c.statics = c.statics[:0]
	c.trigs = c.trigs[:0]
}

// Generation identifies the current tick's records.
func (c *CollisionRoot) Generation() uint32 {
	return c.gen
}

// AddStatic stores a static record and returns its handle.
func (c *CollisionRoot) AddStatic(rec StaticCollisionRecord) StaticCollisionID {
	c.statics = append(c.statics, rec)
	return StaticCollisionID{gen: c.gen, index: uint32(len(c.statics) - 1)}
}

// AddTrigger stores a trigger record and returns its handle.
func (c *CollisionRoot) AddTrigger(rec TriggerCollisionRecord) TriggerCollisionID {
	c.trigs = append(c.trigs, rec)
	return TriggerCollisionID{gen: c.gen, index: uint32(len(c.trigs) - 1)}
}

// Static resolves a handle. ok is false for stale or zero handles.
func (c *CollisionRoot) Static(id StaticCollisionID) (StaticCollisionRecord, bool) {
	if id.gen != c.gen || int(id.index) >= len(c.statics) {
		return StaticCollisionRecord{}, false
	}
	return c.statics[id.index], true
}

// Trigger resolves a handle. ok is false for stale or zero handles.
func (c *CollisionRoot) Trigger(id TriggerCollisionID) (TriggerCollisionRecord, bool) {
	if id.gen != c.gen || int(id.index) >= len(c.trigs) {
		return TriggerCollisionRecord{}, false
	}
	return c.trigs[id.index], true
}

// Statics returns every static record of the current tick.
// The slice is reused after Reset.
func (c *CollisionRoot) Statics() []StaticCollisionRecord {
	return c.statics
}

// Triggers returns every trigger record of the current tick.
// The slice is reused after Reset.
func (c *CollisionRoot) Triggers() []TriggerCollisionRecord {
	return c.trigs
}

// Len returns the number of live static and trigger records.
func (c *CollisionRoot) Len() (statics, triggers int) {
	return len(c.statics), len(c.trigs)
}
