package storage

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/manav03panchal/timesheet/internal/model"
)

// BillingRepo provides operations for BillingManager records.
type BillingRepo struct {
	*Collection[*model.BillingManager]
}

// NewBillingRepo creates a new billing manager repository.
func NewBillingRepo(db *DB) *BillingRepo {
	return &BillingRepo{
		Collection: NewCollection(db, model.PrefixBilling, func() *model.BillingManager {
			return &model.BillingManager{}
		}),
	}
}

// Create creates a new billing manager with a generated key.
func (r *BillingRepo) Create(b *model.BillingManager) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	b.Key = model.GenerateKey(model.PrefixBilling, id.String())
	return r.Add(b)
}

// Search returns managers whose client, project or task code contains term,
// case-insensitively, sorted by client. Archived managers are included only
// when showArchived is set.
func (r *BillingRepo) Search(term string, showArchived bool) ([]*model.BillingManager, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	results, err := r.Filter(func(b *model.BillingManager) bool {
		if b.Archived && !showArchived {
			return false
		}
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(b.Client), term) ||
			strings.Contains(strings.ToLower(b.ProjectCode), term) ||
			strings.Contains(strings.ToLower(b.TaskCode), term)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(results[i].Client) < strings.ToLower(results[j].Client)
	})
	return results, nil
}

// Resolve finds a billing manager by full key or unique id prefix.
func (r *BillingRepo) Resolve(ref string) (*model.BillingManager, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if strings.HasPrefix(ref, r.Prefix()) {
		return r.Get(ref)
	}
	if len(ref) < MinRefLength {
		return nil, ErrKeyNotFound
	}
	matches, err := r.Filter(func(b *model.BillingManager) bool {
		id := model.KeyID(b.Key)
		return strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref)
	})
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrKeyNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, &AmbiguousMatchError{Ref: ref, Matches: len(matches)}
	}
}
