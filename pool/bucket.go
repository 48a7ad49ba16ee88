package pool

import (
	"sync"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/internal/cache"
)

// Stats reports pool activity.
type Stats struct {
	Created    int
	Reused     int
	Destroyed  int
	Failed     int
	Free       int
	InUse      int
	Persistent int
}

// persistentKey identifies one physical instance of a persistent resource.
type persistentKey struct {
	id     framegraph.PersistentHandle
	parity uint32
}

type persistentEntry[K comparable, R comparable] struct {
	key K
	res R
}

type idle[R comparable] struct {
	res   R
	frame uint64
}

type lease[K comparable] struct {
	key        K
	persistent bool
}

// bucketPool is the shared core of the typed pools: free lists keyed by
// descriptor, a frame-aged cache of persistent resources, and the set of
// resources currently handed out. R must be comparable (pointer types).
type bucketPool[K comparable, R comparable] struct {
	mu      sync.Mutex
	kind    string
	opts    options
	destroy func(R)

	free    map[K][]idle[R]
	inUse   map[R]lease[K]
	persist *cache.Cache[persistentKey, persistentEntry[K, R]]
	frame   uint64
	stats   Stats
}

func newBucketPool[K comparable, R comparable](kind string, destroy func(R), opts options) *bucketPool[K, R] {
	p := &bucketPool[K, R]{
		kind:    kind,
		opts:    opts,
		destroy: destroy,
		free:    make(map[K][]idle[R]),
		inUse:   make(map[R]lease[K]),
	}
	p.persist = cache.New[persistentKey, persistentEntry[K, R]](opts.persistentLimit,
		func(_ persistentKey, e persistentEntry[K, R]) {
			p.destroy(e.res)
			p.stats.Destroyed++
		})
	// Leased persistents are never evicted; every cache call runs under p.mu.
	p.persist.SetPinned(func(_ persistentKey, e persistentEntry[K, R]) bool {
		_, leased := p.inUse[e.res]
		return leased
	})
	return p
}

// acquire returns a resource matching key, creating one when nothing can be
// reused. A nonzero id selects the persistent instance (id, parity).
func (p *bucketPool[K, R]) acquire(key K, id framegraph.PersistentHandle, parity uint32, name string, create func() (R, error)) (R, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id != 0 {
		return p.acquirePersistent(key, persistentKey{id: id, parity: parity}, name, create)
	}
	if list := p.free[key]; len(list) > 0 {
		r := list[len(list)-1].res
		p.free[key] = list[:len(list)-1]
		p.inUse[r] = lease[K]{key: key}
		p.stats.Reused++
		return r, true
	}
	r, ok := p.create(name, create)
	if ok {
		p.inUse[r] = lease[K]{key: key}
	}
	return r, ok
}

func (p *bucketPool[K, R]) acquirePersistent(key K, pk persistentKey, name string, create func() (R, error)) (R, bool) {
	if e, ok := p.persist.Get(pk); ok {
		if e.key == key {
			p.inUse[e.res] = lease[K]{key: key, persistent: true}
			p.stats.Reused++
			return e.res, true
		}
		// The descriptor or size changed: the old contents are meaningless.
		p.persist.Take(pk)
		p.destroy(e.res)
		p.stats.Destroyed++
		framegraph.Logger().Debug("pool: persistent resource recreated", "kind", p.kind, "name", name)
	}
	r, ok := p.create(name, create)
	if !ok {
		return r, false
	}
	p.inUse[r] = lease[K]{key: key, persistent: true}
	p.persist.Set(pk, persistentEntry[K, R]{key: key, res: r})
	return r, true
}

// create runs the allocator. Caller must hold p.mu.
func (p *bucketPool[K, R]) create(name string, create func() (R, error)) (R, bool) {
	r, err := create()
	if err != nil {
		p.stats.Failed++
		framegraph.Logger().Warn("pool: acquisition failed", "kind", p.kind, "name", name, "err", err)
		var zero R
		return zero, false
	}
	p.stats.Created++
	return r, true
}

// release returns r to its bucket. Persistent resources stay in the
// persistent cache; unknown resources are ignored.
func (p *bucketPool[K, R]) release(r R) {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.inUse[r]
	if !ok {
		return
	}
	delete(p.inUse, r)
	if l.persistent {
		return
	}
	if limit := p.opts.maxPerBucket; limit > 0 && len(p.free[l.key]) >= limit {
		p.destroy(r)
		p.stats.Destroyed++
		return
	}
	p.free[l.key] = append(p.free[l.key], idle[R]{res: r, frame: p.frame})
}

// cleanup destroys resources that went unused for more than the configured
// number of frames after the frame they were last used in, then advances the
// pool frame.
func (p *bucketPool[K, R]) cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.persist.Sweep(p.opts.maxIdle)
	for key, list := range p.free {
		kept := list[:0]
		for _, e := range list {
			if p.frame-e.frame > p.opts.maxIdle {
				p.destroy(e.res)
				p.stats.Destroyed++
				continue
			}
			kept = append(kept, e)
		}
		clear(list[len(kept):])
		if len(kept) == 0 {
			delete(p.free, key)
		} else {
			p.free[key] = kept
		}
	}

	p.frame++
	p.persist.Advance()
}

// destroyAll destroys every resource the pool knows about, including leased ones.
func (p *bucketPool[K, R]) destroyAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for r, l := range p.inUse {
		if !l.persistent {
			p.destroy(r)
			p.stats.Destroyed++
		}
	}
	clear(p.inUse)
	p.persist.Clear()
	for _, list := range p.free {
		for _, e := range list {
			p.destroy(e.res)
			p.stats.Destroyed++
		}
	}
	clear(p.free)
}

func (p *bucketPool[K, R]) snapshot() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	s.InUse = len(p.inUse)
	s.Persistent = p.persist.Len()
	for _, list := range p.free {
		s.Free += len(list)
	}
	return s
}
