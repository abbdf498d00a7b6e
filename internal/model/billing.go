package model

import "strings"

// Billing types.
const (
	BillingTypeBillable    = "Billable"
	BillingTypeNonBillable = "Non-Billable"
)

// BillingManager maps a client project/task pair to a billing type.
type BillingManager struct {
	Key         string `json:"id"`
	Client      string `json:"client"`
	ProjectCode string `json:"projectCode"`
	TaskCode    string `json:"taskCode"`
	BillingType string `json:"billingType"`
	Archived    bool   `json:"isArchived"`
	Synced      bool   `json:"isSynced"`
}

// SetKey sets the database key.
func (b *BillingManager) SetKey(key string) { b.Key = key }

// GetKey returns the database key.
func (b *BillingManager) GetKey() string { return b.Key }

// IsSynced reports whether the record has been pushed.
func (b *BillingManager) IsSynced() bool { return b.Synced }

// SetSynced sets the sync flag.
func (b *BillingManager) SetSynced(synced bool) { b.Synced = synced }

// IsBillable reports whether the billing type is Billable.
func (b *BillingManager) IsBillable() bool {
	return strings.EqualFold(b.BillingType, BillingTypeBillable)
}

// Matches reports whether the manager covers the given project and task codes.
func (b *BillingManager) Matches(projectCode, taskCode string) bool {
	return b.ProjectCode == projectCode && b.TaskCode == taskCode
}

// ValidBillingType reports whether t is a known billing type.
func ValidBillingType(t string) bool {
	return t == BillingTypeBillable || t == BillingTypeNonBillable
}
