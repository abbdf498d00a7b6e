package storage

import (
	"encoding/json"
	"errors"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/manav03panchal/timesheet/internal/model"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the database.
	ErrKeyNotFound = errors.New("key not found")
)

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// Get retrieves a value by key and unmarshals it into v.
func (d *DB) Get(key string, v model.Model) error {
	return d.db.View(func(txn *badger.Txn) error {
		return getTxn(txn, key, v)
	})
}

func getTxn(txn *badger.Txn, key string, v model.Model) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		return err
	}

	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return err
		}
		v.SetKey(key)
		return nil
	})
}

// GetBytes retrieves raw bytes by key.
func (d *DB) GetBytes(key string) ([]byte, error) {
	var result []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}

		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

// Set stores a model in the database.
func (d *DB) Set(v model.Model) error {
	return d.Update(func(tx *Tx) error {
		return tx.Set(v)
	})
}

// SetBytes stores raw bytes with the given key.
func (d *DB) SetBytes(key string, data []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Delete removes a key from the database.
func (d *DB) Delete(key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Exists checks if a key exists in the database.
func (d *DB) Exists(key string) (bool, error) {
	var exists bool
	err := d.db.View(func(txn *badger.Txn) error {
		var err error
		exists, err = existsTxn(txn, key)
		return err
	})
	return exists, err
}

func existsTxn(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByPrefix retrieves all keys with the given prefix.
func (d *DB) ListByPrefix(prefix string) ([]string, error) {
	var keys []string
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Tx is a read-write transaction. All writes made through one Tx are
// committed together or not at all.
type Tx struct {
	txn *badger.Txn
}

// Update runs fn inside a single read-write transaction.
func (d *DB) Update(fn func(tx *Tx) error) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	})
}

// Get reads key into v within the transaction.
func (tx *Tx) Get(key string, v model.Model) error {
	return getTxn(tx.txn, key, v)
}

// Exists reports whether key is present within the transaction.
func (tx *Tx) Exists(key string) (bool, error) {
	return existsTxn(tx.txn, key)
}

// Set stores v under its key.
func (tx *Tx) Set(v model.Model) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.txn.Set([]byte(v.GetKey()), data)
}

// Save stores v and clears its sync flag if it has one.
func (tx *Tx) Save(v model.Model) error {
	if s, ok := v.(model.Syncable); ok {
		s.SetSynced(false)
	}
	return tx.Set(v)
}

// Delete removes key.
func (tx *Tx) Delete(key string) error {
	return tx.txn.Delete([]byte(key))
}

// GetAllByPrefix retrieves all values with the given prefix.
func GetAllByPrefix[T model.Model](d *DB, prefix string, newFunc func() T) ([]T, error) {
	return GetFilteredByPrefix(d, prefix, newFunc, nil, 0)
}

// GetFilteredByPrefix retrieves values with the given prefix that pass keep.
// A nil keep accepts everything. A positive limit stops iteration early.
func GetFilteredByPrefix[T model.Model](d *DB, prefix string, newFunc func() T, keep func(T) bool, limit int) ([]T, error) {
	var results []T
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			v := newFunc()
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, v)
			})
			if err != nil {
				return err
			}
			v.SetKey(string(item.KeyCopy(nil)))
			if keep != nil && !keep(v) {
				continue
			}
			results = append(results, v)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
		return nil
	})
	return results, err
}
