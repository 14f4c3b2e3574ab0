package portfolio

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"folio/internal/models"
)

const snapshotKey = "projects"

// snapshotCache holds the full project listing between writes.
// Writes bump generation so a listing fetched before the write is not stored.
type snapshotCache struct {
	cache      *gocache.Cache
	generation atomic.Uint64
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	if ttl <= 0 {
		return &snapshotCache{}
	}
	// No janitor goroutine: a single key is expired lazily on Get.
	return &snapshotCache{cache: gocache.New(ttl, 0)}
}

// get returns the cached listing, or the generation to pass to set on a miss.
func (s *snapshotCache) get() ([]models.Project, uint64, bool) {
	gen := s.generation.Load()
	if s.cache == nil {
		return nil, gen, false
	}
	if val, found := s.cache.Get(snapshotKey); found {
		return val.([]models.Project), gen, true
	}
	return nil, gen, false
}

// set stores projects unless a write happened since gen was read.
func (s *snapshotCache) set(gen uint64, projects []models.Project) {
	if s.cache == nil || s.generation.Load() != gen {
		return
	}
	s.cache.SetDefault(snapshotKey, projects)
	// a write racing the store above wins
	if s.generation.Load() != gen {
		s.cache.Delete(snapshotKey)
	}
}

func (s *snapshotCache) invalidate() {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	s.cache.Flush()
}
