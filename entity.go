package ecs

import "fmt"

// Entity is an opaque handle for a spawned object: a dense id paired with a
// generation counter. Equality is structural; a handle whose generation is
// stale (the id has been recycled by a later spawn) no longer refers to the
// entity it was issued for, though rejecting a stale handle is the caller's
// concern (typically World, which tracks id -> row mappings).
type Entity struct {
	id         uint32
	generation uint32
}

// ID returns the entity's dense identifier.
func (e Entity) ID() uint32 { return e.id }

// Generation returns the entity's generation counter.
func (e Entity) Generation() uint32 { return e.generation }

// Valid reports whether this handle carries a non-zero id. It does not by
// itself tell you whether the entity is still alive in a particular World —
// use World.Alive for that.
func (e Entity) Valid() bool { return e.id != 0 }

func (e Entity) String() string {
	return fmt.Sprintf("Entity{id:%d gen:%d}", e.id, e.generation)
}

// EntityDestroyCallback is invoked when an entity with a registered callback
// is despawned.
type EntityDestroyCallback func(Entity)

// entityRecord is the World-owned bookkeeping for one entity slot: where it
// currently lives (which archetype, which row) and its relationship state.
// Entities themselves stay plain (id, generation) values; this is the
// "entity -> row" mapping the spec calls out as an external concern for the
// core, owned here by World since World is the core's entity-management
// surface.
type entityRecord struct {
	generation  uint32
	alive       bool
	archetype   *archetype
	row         int
	parent      Entity
	hasParent   bool
	onDestroy   EntityDestroyCallback
}
