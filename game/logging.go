package game

import "log/slog"

// logWorldState logs a one-line summary of the room and the bird.
func (g *Game) logWorldState() {
	entities, stuck := g.probe.counts()
	statics, triggers := g.pipeline.Resources().Root.Len()

	attrs := []any{
		"tick", g.tick,
		"room", g.room.Name,
		"entities", entities,
		"stuck", stuck,
		"static_records", statics,
		"trigger_records", triggers,
		"bullet_time", g.pipeline.Resources().BulletTime,
	}

	tf, vel, bird, isStuck, ok := g.gameplay.BirdState()
	if ok {
		attrs = append(attrs, slog.Group("bird",
			"x", tf.Pos.X,
			"y", tf.Pos.Y,
			"vx", vel.X,
			"vy", vel.Y,
			"stuck", isStuck,
			"health", bird.Health,
			"launches", bird.LaunchesLeft,
			"bullets", bird.BulletsLeft,
		))
	}

	slog.Info("world", attrs...)
}
