package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/rookery/components"
)

// ErrInvariant is wrapped by every illegal component combination.
var ErrInvariant = errors.New("physics invariant violated")

// ValidateSystem panics on component combinations the physics cannot
// handle. It only runs in development builds; production skips the stage.
type ValidateSystem struct {
	providers ecs.Filter1[components.StaticProvider]
	receivers ecs.Filter1[components.StaticReceiver]
	triggers  ecs.Filter1[components.TriggerReceiver]

	tfMap   *ecs.Map[components.Transform]
	bndMap  *ecs.Map[components.Bounds]
	tranMap *ecs.Map[components.DynoTran]
	rotMap  *ecs.Map[components.DynoRot]
	provMap *ecs.Map[components.StaticProvider]
	rxMap   *ecs.Map[components.StaticReceiver]
	trigMap *ecs.Map[components.TriggerReceiver]
}

// NewValidateSystem creates the validation stage.
func NewValidateSystem(w *ecs.World) *ValidateSystem {
	return &ValidateSystem{
		providers: *ecs.NewFilter1[components.StaticProvider](w),
		receivers: *ecs.NewFilter1[components.StaticReceiver](w),
		triggers:  *ecs.NewFilter1[components.TriggerReceiver](w),
		tfMap:     ecs.NewMap[components.Transform](w),
		bndMap:    ecs.NewMap[components.Bounds](w),
		tranMap:   ecs.NewMap[components.DynoTran](w),
		rotMap:    ecs.NewMap[components.DynoRot](w),
		provMap:   ecs.NewMap[components.StaticProvider](w),
		rxMap:     ecs.NewMap[components.StaticReceiver](w),
		trigMap:   ecs.NewMap[components.TriggerReceiver](w),
	}
}

// Update panics with every violation found.
func (s *ValidateSystem) Update(w *ecs.World) {
	if err := s.Check(); err != nil {
		panic(err)
	}
}

// Check returns all violations joined, or nil.
func (s *ValidateSystem) Check() error {
	var errs []error
	fail := func(e ecs.Entity, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: entity %d: %s", ErrInvariant, e.ID(), fmt.Sprintf(format, args...)))
	}
	placed := func(e ecs.Entity, role string) {
		if !s.bndMap.Has(e) {
			fail(e, "%s without Bounds", role)
		}
		if !s.tfMap.Has(e) {
			fail(e, "%s without Transform", role)
		}
	}

	pq := s.providers.Query()
	for pq.Next() {
		e := pq.Entity()
		placed(e, "static provider")
		if s.rxMap.Has(e) {
			fail(e, "both static provider and static receiver")
		}
		if s.trigMap.Has(e) {
			fail(e, "trigger receiver on a static provider")
		}
		if s.tranMap.Has(e) && s.rotMap.Has(e) {
			fail(e, "static provider with both DynoTran and DynoRot")
		}
	}

	rq := s.receivers.Query()
	for rq.Next() {
		e := rq.Entity()
		placed(e, "static receiver")
		if !s.tranMap.Has(e) {
			fail(e, "static receiver without DynoTran")
		}
		if s.rotMap.Has(e) {
			fail(e, "static receiver with DynoRot")
		}
	}

	tq := s.triggers.Query()
	for tq.Next() {
		e := tq.Entity()
		placed(e, "trigger receiver")
	}

	return errors.Join(errs...)
}
