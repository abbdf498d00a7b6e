package storage

import (
	"time"

	"github.com/manav03panchal/timesheet/internal/model"
)

// ExpiringRepo stores values that disappear after a TTL.
type ExpiringRepo struct {
	db  *DB
	now func() time.Time
}

// NewExpiringRepo creates a new expiring item repository using now as its clock.
func NewExpiringRepo(db *DB, now func() time.Time) *ExpiringRepo {
	if now == nil {
		now = time.Now
	}
	return &ExpiringRepo{db: db, now: now}
}

// SetWithExpiration stores value under name for ttl.
func (r *ExpiringRepo) SetWithExpiration(name, value string, ttl time.Duration) error {
	return r.db.Set(&model.ExpiringItem{
		Key:    model.GenerateKey(model.PrefixExpiring, name),
		Value:  value,
		Expiry: r.now().Add(ttl).UTC(),
	})
}

// GetWithExpiration returns the value for name. An expired item is deleted
// and reported as absent.
func (r *ExpiringRepo) GetWithExpiration(name string) (string, bool, error) {
	key := model.GenerateKey(model.PrefixExpiring, name)
	item := &model.ExpiringItem{}
	if err := r.db.Get(key, item); err != nil {
		if IsErrKeyNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if item.Expired(r.now()) {
		if err := r.db.Delete(key); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return item.Value, true, nil
}
