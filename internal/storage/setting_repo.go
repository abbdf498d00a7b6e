package storage

import (
	"strconv"
	"strings"

	"github.com/manav03panchal/timesheet/internal/model"
)

// SettingRepo provides operations for Setting records, one per type.
type SettingRepo struct {
	*Collection[*model.Setting]
}

// NewSettingRepo creates a new settings repository.
func NewSettingRepo(db *DB) *SettingRepo {
	return &SettingRepo{
		Collection: NewCollection(db, model.PrefixSetting, func() *model.Setting {
			return &model.Setting{}
		}),
	}
}

// GetValue returns the value of a setting type and whether it is set.
func (r *SettingRepo) GetValue(settingType string) (string, bool, error) {
	s, err := r.Get(model.SettingKey(settingType))
	if err != nil {
		if IsErrKeyNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return s.Value, true, nil
}

// SetValue creates or replaces the setting of the given type.
func (r *SettingRepo) SetValue(settingType, value string) error {
	return r.Add(model.NewSetting(settingType, value))
}

// Bool returns a boolean setting. Missing or unparsable values yield def.
func (r *SettingRepo) Bool(settingType string, def bool) bool {
	v, ok, err := r.GetValue(settingType)
	if err != nil || !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// Float returns a numeric setting. Missing or unparsable values yield def.
func (r *SettingRepo) Float(settingType string, def float64) float64 {
	v, ok, err := r.GetValue(settingType)
	if err != nil || !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// String returns a string setting, or def when unset or empty.
func (r *SettingRepo) String(settingType, def string) string {
	v, ok, err := r.GetValue(settingType)
	if err != nil || !ok || v == "" {
		return def
	}
	return v
}

// Replace clears every setting and stores the given ones, keeping their sync flag.
func (r *SettingRepo) Replace(settings []*model.Setting) error {
	if err := r.Clear(); err != nil {
		return err
	}
	for _, s := range settings {
		s.Key = model.SettingKey(s.Type)
	}
	_, err := r.BulkAdd(settings)
	return err
}
