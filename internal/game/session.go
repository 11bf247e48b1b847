package game

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"voxterrain/internal/config"
	"voxterrain/internal/physics"
	"voxterrain/internal/profiling"
	"voxterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ScheduledEdit is a stencil applied at the start of a given tick.
type ScheduledEdit struct {
	Tick    int
	Pos     mgl32.Vec3
	Ray     *mgl32.Vec3 // cast from Pos and edit at the hit instead
	Stencil *world.Stencil
}

// Stats accumulates over a whole run.
type Stats struct {
	Ticks     int
	Edits     int
	Missed    int // ray edits that hit nothing
	Flushed   int
	Meshed    int
	Triangles int
	Dropped   int
}

// Session drives a Volume: one target position and any due edits per tick,
// with periodic flushes to the store.
type Session struct {
	Volume  *world.Volume
	Target  TargetProvider
	Limiter *TickLimiter

	FlushEvery int
	SlowTick   time.Duration

	edits []ScheduledEdit
	next  int // index of the first edit not yet applied
	tick  int
	stats Stats
}

// NewSession builds a session from the session and store sections of cfg.
func NewSession(v *world.Volume, cfg *config.Config, stream *config.StreamSettings) (*Session, error) {
	target, err := NewTargetProvider(cfg.Session.Path)
	if err != nil {
		return nil, err
	}
	edits := make([]ScheduledEdit, 0, len(cfg.Session.Edits))
	for i, e := range cfg.Session.Edits {
		shape, err := world.ParseShape(e.Shape)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		st, err := world.NewStencil(shape, e.Radius, e.Fill, v.Layout().ChunkVoxels)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		se := ScheduledEdit{Tick: e.Tick, Pos: mgl32.Vec3(e.Pos), Stencil: st}
		if e.Ray != nil {
			dir := mgl32.Vec3(*e.Ray)
			se.Ray = &dir
		}
		edits = append(edits, se)
	}

	s := &Session{
		Volume:     v,
		Target:     target,
		Limiter:    NewTickLimiter(stream),
		FlushEvery: cfg.Store.FlushEvery,
		SlowTick:   cfg.SlowTick(),
	}
	s.Schedule(edits...)
	return s, nil
}

// Schedule adds edits. Edits for ticks that already ran are applied on the
// next tick.
func (s *Session) Schedule(edits ...ScheduledEdit) {
	pending := append(s.edits[s.next:len(s.edits):len(s.edits)], edits...)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Tick < pending[j].Tick })
	s.edits = pending
	s.next = 0
}

// Tick returns the number of completed ticks.
func (s *Session) Tick() int { return s.tick }

// Stats returns the totals so far.
func (s *Session) Stats() Stats { return s.stats }

// Step applies due edits, ticks the volume toward the current target and
// flushes when due.
func (s *Session) Step(ctx context.Context) (world.TickStats, error) {
	profiling.ResetTick()
	start := time.Now()

	for s.next < len(s.edits) && s.edits[s.next].Tick <= s.tick {
		s.apply(s.edits[s.next])
		s.next++
	}

	stats, err := s.Volume.Tick(s.Target.At(s.tick))
	if err != nil {
		return stats, fmt.Errorf("tick %d: %w", s.tick, err)
	}
	s.tick++
	s.stats.Ticks++
	s.stats.Meshed += stats.Meshed
	s.stats.Triangles += stats.Triangles
	s.stats.Dropped += stats.Dropped

	if s.FlushEvery > 0 && s.tick%s.FlushEvery == 0 {
		if err := s.flush(ctx); err != nil {
			return stats, err
		}
	}

	if d := time.Since(start); s.SlowTick > 0 && d > s.SlowTick {
		log.Printf("Slow tick %d: %v. Top tasks: %s", s.tick-1, d, profiling.TopN(5))
	}
	return stats, nil
}

func (s *Session) apply(e ScheduledEdit) {
	pos := e.Pos
	if e.Ray != nil {
		hit := physics.Raycast(e.Pos, *e.Ray, physics.MinReachDistance, physics.MaxReachDistance,
			s.Volume.IsoLevel(), s.Volume)
		if !hit.Hit {
			log.Printf("edit at tick %d: ray from %v hit nothing", e.Tick, e.Pos)
			s.stats.Missed++
			return
		}
		pos = hit.Position
	}
	s.Volume.ApplyStencil(pos, e.Stencil)
	s.stats.Edits++
}

func (s *Session) flush(ctx context.Context) error {
	n, err := s.Volume.Flush(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Flushed %d edited chunks", n)
	}
	s.stats.Flushed += n
	return nil
}

// Run steps until maxTicks ticks have completed (0 means no limit) or ctx is
// done, then flushes once more. The tick limiter paces the loop.
func (s *Session) Run(ctx context.Context, maxTicks int) (Stats, error) {
	for maxTicks <= 0 || s.tick < maxTicks {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.Step(ctx); err != nil {
			return s.stats, err
		}
		s.Limiter.Wait()
	}
	// the final flush must not be skipped by a cancelled context
	if err := s.flush(context.WithoutCancel(ctx)); err != nil {
		return s.stats, err
	}
	return s.stats, nil
}
