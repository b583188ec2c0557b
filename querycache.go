package ecs

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/kamstrup/intmap"
)

// queryCacheKey is the (include, excluded, additional) shape a matched
// archetype list is cached under (spec §4.3): include/excluded come from the
// query builder, additional is contributed by typed iteration helpers that
// require components the query itself never declared.
type queryCacheKey struct {
	include    BitSet
	excluded   BitSet
	additional BitSet
}

func (k queryCacheKey) hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v|%v|%v", k.include, k.excluded, k.additional)
	return h.Sum64()
}

type queryCacheEntry struct {
	key        queryCacheKey
	archetypes []*archetype
}

// QueryCache memoizes the archetype list matching a given access shape
// (invariant I4): empty on a fresh world, fully cleared whenever a new
// archetype is created rather than patched incrementally, matching the
// teacher's SimpleCache.Clear convention in cache.go.
//
// Backed by github.com/kamstrup/intmap (pulled in from the plus3-ooftn pack
// repo) for the hash -> bucket lookup; a sync.RWMutex guards it since reads
// (query lookups) vastly outnumber writes (new-archetype invalidation),
// the Open Question resolution recorded in SPEC_FULL.md/DESIGN.md.
type QueryCache struct {
	mu      sync.RWMutex
	buckets *intmap.Map[uint64, []*queryCacheEntry]
}

// NewQueryCache returns an empty cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{buckets: intmap.New[uint64, []*queryCacheEntry](64)}
}

func (qc *QueryCache) get(key queryCacheKey) ([]*archetype, bool) {
	h := key.hash()
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	entries, ok := qc.buckets.Get(h)
	if !ok {
		return nil, false
	}
	for _, e := range entries {
		if e.key == key {
			return e.archetypes, true
		}
	}
	return nil, false
}

func (qc *QueryCache) put(key queryCacheKey, archetypes []*archetype) {
	h := key.hash()
	qc.mu.Lock()
	defer qc.mu.Unlock()
	entries, _ := qc.buckets.Get(h)
	for i, e := range entries {
		if e.key == key {
			entries[i].archetypes = archetypes
			return
		}
	}
	qc.buckets.Put(h, append(entries, &queryCacheEntry{key: key, archetypes: archetypes}))
}

// invalidate drops every cached entry. Called whenever the world creates a
// new archetype, since a new archetype may now belong to a previously
// cached shape's result set.
func (qc *QueryCache) invalidate() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.buckets = intmap.New[uint64, []*queryCacheEntry](64)
}
