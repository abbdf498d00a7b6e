package storage

import (
	"github.com/manav03panchal/timesheet/internal/model"
)

// Collection is a named set of syncable records sharing a key prefix.
type Collection[T model.Syncable] struct {
	db      *DB
	prefix  string
	newFunc func() T
}

// NewCollection creates a collection over keys starting with prefix + ":".
func NewCollection[T model.Syncable](db *DB, prefix string, newFunc func() T) *Collection[T] {
	return &Collection[T]{db: db, prefix: prefix + ":", newFunc: newFunc}
}

// Prefix returns the key prefix including the separator.
func (c *Collection[T]) Prefix() string {
	return c.prefix
}

// Get retrieves a record by key.
func (c *Collection[T]) Get(key string) (T, error) {
	v := c.newFunc()
	if err := c.db.Get(key, v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Add stores a new record. The record is marked unsynced.
func (c *Collection[T]) Add(v T) error {
	return c.db.Update(func(tx *Tx) error {
		return tx.Save(v)
	})
}

// Update stores an existing record, marking it unsynced.
func (c *Collection[T]) Update(v T) error {
	return c.db.Update(func(tx *Tx) error {
		if ok, err := tx.Exists(v.GetKey()); err != nil {
			return err
		} else if !ok {
			return ErrKeyNotFound
		}
		return tx.Save(v)
	})
}

// Delete removes a record by key.
func (c *Collection[T]) Delete(key string) error {
	return c.db.Delete(key)
}

// List retrieves every record in key order.
func (c *Collection[T]) List() ([]T, error) {
	return GetAllByPrefix(c.db, c.prefix, c.newFunc)
}

// Filter retrieves records passing keep.
func (c *Collection[T]) Filter(keep func(T) bool) ([]T, error) {
	return GetFilteredByPrefix(c.db, c.prefix, c.newFunc, keep, 0)
}

// ListUnsynced retrieves up to limit records not yet pushed. Zero means no limit.
func (c *Collection[T]) ListUnsynced(limit int) ([]T, error) {
	return GetFilteredByPrefix(c.db, c.prefix, c.newFunc, func(v T) bool {
		return !v.IsSynced()
	}, limit)
}

// MarkSynced sets the sync flag on the given keys. Keys that no longer
// exist are skipped.
func (c *Collection[T]) MarkSynced(keys []string) error {
	return c.db.Update(func(tx *Tx) error {
		for _, key := range keys {
			v := c.newFunc()
			if err := tx.Get(key, v); err != nil {
				if IsErrKeyNotFound(err) {
					continue
				}
				return err
			}
			v.SetSynced(true)
			if err := tx.Set(v); err != nil {
				return err
			}
		}
		return nil
	})
}

// BulkAdd stores records whose keys are not present yet, keeping their sync
// flag as given. It returns how many were added.
func (c *Collection[T]) BulkAdd(items []T) (int, error) {
	added := 0
	err := c.db.Update(func(tx *Tx) error {
		added = 0
		for _, v := range items {
			exists, err := tx.Exists(v.GetKey())
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := tx.Set(v); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	return added, err
}

// Clear deletes every record in the collection.
func (c *Collection[T]) Clear() error {
	keys, err := c.db.ListByPrefix(c.prefix)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *Tx) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}
