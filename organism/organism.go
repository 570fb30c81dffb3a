// Package organism provides the minimal organism_id tag registry the
// core needs per spec §1: cells carry an opaque organism id and the
// core reports transfers against it, but the organism/tree logic
// itself is out of scope. Grounded on game/game.go's
// ecs.NewWorld/ecs.NewMap1 setup, narrowed from the teacher's full
// organism component set down to a single presence tag.
package organism

import "github.com/mlange-42/ark/ecs"

// Tag marks an ark entity as a live organism known to the grid. It
// carries no fields; its only purpose is to give organism ids a
// lifetime the grid can query.
type Tag struct{}

// Registry maps cell organism_id values to ark entities, so the grid
// can ask "is this organism still alive" without owning any
// organism-specific state itself.
type Registry struct {
	world *ecs.World
	tags  *ecs.Map1[Tag]
	ids   map[uint32]ecs.Entity
	next  uint32
}

// NewRegistry creates an empty organism registry. 0 is reserved as the
// "no organism" sentinel (spec §3.2).
func NewRegistry() *Registry {
	world := ecs.NewWorld()
	return &Registry{
		world: world,
		tags:  ecs.NewMap1[Tag](world),
		ids:   make(map[uint32]ecs.Entity),
		next:  1,
	}
}

// Register allocates a fresh organism id backed by a live entity.
func (r *Registry) Register() uint32 {
	id := r.next
	r.next++
	entity := r.tags.NewEntity(&Tag{})
	r.ids[id] = entity
	return id
}

// Alive reports whether an organism id still refers to a live entity.
// 0 (no organism) is always reported dead.
func (r *Registry) Alive(id uint32) bool {
	if id == 0 {
		return false
	}
	entity, ok := r.ids[id]
	if !ok {
		return false
	}
	return r.world.Alive(entity)
}

// Release removes an organism id's backing entity, e.g. when the
// out-of-scope organism subsystem decides the organism has died.
func (r *Registry) Release(id uint32) {
	entity, ok := r.ids[id]
	if !ok {
		return
	}
	r.world.RemoveEntity(entity)
	delete(r.ids, id)
}

// Count returns the number of currently registered organism ids.
func (r *Registry) Count() int {
	return len(r.ids)
}
