package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rookery/components"
)

// Commands queues structural changes that must not happen while a query is
// open. The pipeline flushes the queue after every stage.
type Commands struct {
	ops      []func(w *ecs.World)
	stuckMap *ecs.Map[components.Stuck]
}

// NewCommands creates an empty queue bound to w.
func NewCommands(w *ecs.World) *Commands {
	return &Commands{
		stuckMap: ecs.NewMap[components.Stuck](w),
	}
}

// InsertStuck attaches (or replaces) a Stuck component on e.
func (c *Commands) InsertStuck(e ecs.Entity, stuck components.Stuck) {
	c.ops = append(c.ops, func(w *ecs.World) {
		if !w.Alive(e) {
			return
		}
		if c.stuckMap.Has(e) {
			*c.stuckMap.Get(e) = stuck
			return
		}
		c.stuckMap.Add(e, &stuck)
	})
}

// RemoveStuck releases e if it is stuck.
func (c *Commands) RemoveStuck(e ecs.Entity) {
	c.ops = append(c.ops, func(w *ecs.World) {
		if w.Alive(e) && c.stuckMap.Has(e) {
			c.stuckMap.Remove(e)
		}
	})
}

// Despawn removes e from the world. Despawning a dead entity is a no-op.
func (c *Commands) Despawn(e ecs.Entity) {
	c.ops = append(c.ops, func(w *ecs.World) {
		if w.Alive(e) {
			w.RemoveEntity(e)
		}
	})
}

// Run queues an arbitrary structural change.
func (c *Commands) Run(fn func(w *ecs.World)) {
	c.ops = append(c.ops, fn)
}

// Len returns the number of pending operations.
func (c *Commands) Len() int {
	return len(c.ops)
}

// Flush applies pending operations in order and returns how many ran.
// Operations queued while flushing run in the same flush.
func (c *Commands) Flush(w *ecs.World) int {
	n := 0
	for n < len(c.ops) {
		op := c.ops[n]
		c.ops[n] = nil
		op(w)
		n++
	}
	c.ops = c.ops[:0]
	return n
}
