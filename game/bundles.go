package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/rookery/components"
	"github.com/pthm-cable/rookery/config"
	"github.com/pthm-cable/rookery/geometry"
)

const (
	bulletRadius = 2.0
	frameBorder  = 10.0
)

// Spawner creates entities with the component sets the physics expects.
// Each bundle is one archetype, so entities are created in a single call.
type Spawner struct {
	cfg config.GameConfig

	birdMapper *ecs.Map7[
		components.Transform,
		components.Bounds,
		components.DynoTran,
		components.Gravity,
		components.StaticReceiver,
		components.TriggerReceiver,
		components.Bird,
	]
	bulletMapper *ecs.Map7[
		components.Transform,
		components.Bounds,
		components.DynoTran,
		components.Gravity,
		components.StaticReceiver,
		components.TriggerReceiver,
		components.Bullet,
	]
	providerMapper *ecs.Map3[components.Transform, components.Bounds, components.StaticProvider]
	triggerMapper  *ecs.Map3[components.Transform, components.Bounds, components.TriggerReceiver]
	spewMapper     *ecs.Map6[
		components.Transform,
		components.Bounds,
		components.DynoTran,
		components.StaticReceiver,
		components.TriggerReceiver,
		components.Spew,
	]

	tranMap   *ecs.Map[components.DynoTran]
	rotMap    *ecs.Map[components.DynoRot]
	patrolMap *ecs.Map[components.Patrol]
	heartMap  *ecs.Map[components.Heart]
	goNextMap *ecs.Map[components.GoNext]
	simpMap   *ecs.Map[components.Simp]

	gravity float64
}

// NewSpawner creates a spawner for w.
func NewSpawner(w *ecs.World, cfg *config.Config) *Spawner {
	return &Spawner{
		cfg:     cfg.Game,
		gravity: cfg.Physics.GravityStrength,
		birdMapper: ecs.NewMap7[
			components.Transform,
			components.Bounds,
			components.DynoTran,
			components.Gravity,
			components.StaticReceiver,
			components.TriggerReceiver,
			components.Bird,
		](w),
		bulletMapper: ecs.NewMap7[
			components.Transform,
			components.Bounds,
			components.DynoTran,
			components.Gravity,
			components.StaticReceiver,
			components.TriggerReceiver,
			components.Bullet,
		](w),
		providerMapper: ecs.NewMap3[components.Transform, components.Bounds, components.StaticProvider](w),
		triggerMapper:  ecs.NewMap3[components.Transform, components.Bounds, components.TriggerReceiver](w),
		spewMapper: ecs.NewMap6[
			components.Transform,
			components.Bounds,
			components.DynoTran,
			components.StaticReceiver,
			components.TriggerReceiver,
			components.Spew,
		](w),
		tranMap:   ecs.NewMap[components.DynoTran](w),
		rotMap:    ecs.NewMap[components.DynoRot](w),
		patrolMap: ecs.NewMap[components.Patrol](w),
		heartMap:  ecs.NewMap[components.Heart](w),
		goNextMap: ecs.NewMap[components.GoNext](w),
		simpMap:   ecs.NewMap[components.Simp](w),
	}
}

// SpawnBird creates the player: a gravity-bound normal receiver that is
// also the bird trigger.
func (s *Spawner) SpawnBird(pos, vel r2.Vec) ecs.Entity {
	return s.birdMapper.NewEntity(
		&components.Transform{Pos: pos},
		&components.Bounds{Shape: geometry.Circle(s.cfg.BirdRadius)},
		&components.DynoTran{Vel: vel},
		&components.Gravity{Strength: s.gravity},
		&components.StaticReceiver{Kind: components.ReceiverNormal},
		&components.TriggerReceiver{Kind: components.TriggerBird},
		&components.Bird{
			LaunchesLeft: s.cfg.Launches,
			BulletsLeft:  s.cfg.Bullets,
			Health:       s.cfg.Health,
		},
	)
}

// SpawnBullet creates a projectile that stops dead on any static and is
// despawned by gameplay when it does.
func (s *Spawner) SpawnBullet(pos, vel r2.Vec, good bool) ecs.Entity {
	kind := components.TriggerBulletBad
	if good {
		kind = components.TriggerBulletGood
	}
	return s.bulletMapper.NewEntity(
		&components.Transform{Pos: pos},
		&components.Bounds{Shape: geometry.Circle(bulletRadius)},
		&components.DynoTran{Vel: vel},
		&components.Gravity{Strength: s.gravity},
		&components.StaticReceiver{Kind: components.ReceiverStop},
		&components.TriggerReceiver{Kind: kind},
		&components.Bullet{Good: good},
	)
}

// SpawnSticky creates a still platform that captures receivers.
func (s *Spawner) SpawnSticky(pos r2.Vec, shape geometry.Shape) ecs.Entity {
	return s.spawnProvider(components.Transform{Pos: pos}, shape, components.ProviderSticky)
}

// SpawnWall creates a still platform that bounces receivers.
func (s *Spawner) SpawnWall(pos r2.Vec, shape geometry.Shape) ecs.Entity {
	return s.spawnProvider(components.Transform{Pos: pos}, shape, components.ProviderNormal)
}

func (s *Spawner) spawnProvider(tf components.Transform, shape geometry.Shape, kind components.StaticProviderKind) ecs.Entity {
	return s.providerMapper.NewEntity(&tf, &components.Bounds{Shape: shape}, &components.StaticProvider{Kind: kind})
}

// SpawnTrigger creates a still trigger area.
func (s *Spawner) SpawnTrigger(pos r2.Vec, shape geometry.Shape, kind components.TriggerKind) ecs.Entity {
	return s.triggerMapper.NewEntity(
		&components.Transform{Pos: pos},
		&components.Bounds{Shape: shape},
		&components.TriggerReceiver{Kind: kind},
	)
}

// SpawnHeart creates a health pickup.
func (s *Spawner) SpawnHeart(pos r2.Vec, shape geometry.Shape) ecs.Entity {
	e := s.SpawnTrigger(pos, shape, components.TriggerHeart)
	s.heartMap.Add(e, &components.Heart{})
	return e
}

// SpawnGoNext creates the target that ends the room when shot.
func (s *Spawner) SpawnGoNext(pos r2.Vec, shape geometry.Shape) ecs.Entity {
	e := s.SpawnTrigger(pos, shape, components.TriggerGoNext)
	s.goNextMap.Add(e, &components.GoNext{})
	return e
}

// SpawnSimp creates a turret enemy. Its body hurts the bird on contact.
func (s *Spawner) SpawnSimp(pos r2.Vec, shape geometry.Shape, fireEvery float64) ecs.Entity {
	if fireEvery <= 0 {
		fireEvery = 3
	}
	e := s.SpawnTrigger(pos, shape, components.TriggerSimpBody)
	s.simpMap.Add(e, &components.Simp{FireEvery: fireEvery, Cooldown: fireEvery})
	return e
}

// SpawnSpew creates a chasing enemy. It is a go-around receiver, so it
// slides past platforms instead of bouncing off them.
func (s *Spawner) SpawnSpew(pos r2.Vec, shape geometry.Shape, spew components.Spew, mult int) ecs.Entity {
	if spew.Health <= 0 {
		spew.Health = 3
	}
	if spew.ImmuneTo == nil {
		spew.ImmuneTo = make(map[ecs.Entity]bool)
	}
	return s.spewMapper.NewEntity(
		&components.Transform{Pos: pos},
		&components.Bounds{Shape: shape},
		&components.DynoTran{},
		&components.StaticReceiver{Kind: components.ReceiverGoAround, Mult: mult},
		&components.TriggerReceiver{Kind: components.TriggerSimpBody},
		&spew,
	)
}

// SpawnRoom creates everything a room spec describes except the bird,
// which SpawnBird places separately.
func (s *Spawner) SpawnRoom(room *RoomSpec) {
	if room.Enclosed {
		s.SpawnSticky(r2.Vec{}, frame(room.Size, frameBorder))
	}
	for i := range room.Entities {
		s.spawnEntity(&room.Entities[i])
	}
}

func (s *Spawner) spawnEntity(spec *EntitySpec) ecs.Entity {
	// Validated when the room was parsed.
	shape, err := spec.BuildShape()
	if err != nil {
		panic(err)
	}
	pos := spec.Pos.Vec()

	switch spec.Kind {
	case KindWall, KindSticky:
		kind := components.ProviderNormal
		if spec.Kind == KindSticky {
			kind = components.ProviderSticky
		}
		e := s.spawnProvider(components.Transform{Pos: pos, Angle: radians(spec.Angle)}, shape, kind)
		if spec.Vel != (Vec2{}) {
			s.tranMap.Add(e, &components.DynoTran{Vel: spec.Vel.Vec()})
			if spec.Range > 0 {
				s.patrolMap.Add(e, &components.Patrol{Origin: pos, Range: spec.Range})
			}
		}
		if spec.Rot != 0 {
			s.rotMap.Add(e, &components.DynoRot{Rot: radians(spec.Rot)})
		}
		return e
	case KindHeart:
		return s.SpawnHeart(pos, shape)
	case KindGoNext:
		return s.SpawnGoNext(pos, shape)
	case KindSimp:
		return s.SpawnSimp(pos, shape, spec.FireEvery)
	case KindSpew:
		return s.SpawnSpew(pos, shape, components.Spew{
			Speed:        spec.Speed,
			PreferFuture: spec.PreferFuture,
			Health:       spec.Health,
		}, spec.Mult)
	case KindTrigger:
		return s.SpawnTrigger(pos, shape, components.TutorialTrigger(spec.Key))
	default:
		panic("game: unknown entity kind " + spec.Kind)
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
