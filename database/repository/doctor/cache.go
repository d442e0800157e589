package doctorRepo

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"medislot/models"
)

type cacheEntry struct {
	doctor   models.Doctor
	cachedAt time.Time
}

// CachedDoctorRepo keeps recently read doctor profiles in an LRU so that fee lookups during booking
// do not hit the database every time. Entries older than ttl are refetched.
type CachedDoctorRepo struct {
	next  DoctorRepository
	cache *lru.Cache[string, *cacheEntry]
	ttl   time.Duration
	now   func() time.Time
}

func NewCachedDoctorRepo(next DoctorRepository, size int, ttl time.Duration) (*CachedDoctorRepo, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachedDoctorRepo{next: next, cache: cache, ttl: ttl, now: time.Now}, nil
}

func (r *CachedDoctorRepo) GetByID(ctx context.Context, id string) (*models.Doctor, error) {
	entry, ok := r.cache.Get(id)
	if ok && (r.ttl <= 0 || r.now().Sub(entry.cachedAt) < r.ttl) {
		d := entry.doctor
		return &d, nil
	}

	doctor, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Add(id, &cacheEntry{doctor: *doctor, cachedAt: r.now()})
	return doctor, nil
}

func (r *CachedDoctorRepo) Create(ctx context.Context, doctor *models.Doctor) error {
	if err := r.next.Create(ctx, doctor); err != nil {
		return err
	}
	r.cache.Remove(doctor.ID)
	return nil
}
