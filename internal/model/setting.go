package model

// Setting types.
const (
	SettingTimezone                = "timezone"
	SettingCopyTimesheet           = "copytimesheet"
	SettingDecimalMark             = "decimalmark"
	SettingWorkLocation            = "worklocation"
	SettingOracleEntity            = "oracleentity"
	SettingIsContractual           = "isContractual"
	SettingShowComments            = "showcomments"
	SettingIncludeCommentsOnUpload = "includecommentsonupload"
	SettingAutoSubmitTimesheet     = "autoSubmitTimesheet"
	SettingBillableGoal            = "billableGoal"
)

// SettingTypes lists every known setting type in display order.
var SettingTypes = []string{
	SettingTimezone,
	SettingCopyTimesheet,
	SettingDecimalMark,
	SettingWorkLocation,
	SettingOracleEntity,
	SettingIsContractual,
	SettingShowComments,
	SettingIncludeCommentsOnUpload,
	SettingAutoSubmitTimesheet,
	SettingBillableGoal,
}

// Setting is a single user preference. There is one record per type.
type Setting struct {
	Key    string `json:"-"`
	Type   string `json:"type"`
	Value  string `json:"value"`
	Synced bool   `json:"isSynced"`
}

// SetKey sets the database key.
func (s *Setting) SetKey(key string) { s.Key = key }

// GetKey returns the database key.
func (s *Setting) GetKey() string { return s.Key }

// IsSynced reports whether the setting has been pushed.
func (s *Setting) IsSynced() bool { return s.Synced }

// SetSynced sets the sync flag.
func (s *Setting) SetSynced(synced bool) { s.Synced = synced }

// IsKnownSetting reports whether t is a known setting type.
func IsKnownSetting(t string) bool {
	for _, k := range SettingTypes {
		if k == t {
			return true
		}
	}
	return false
}

// SettingKey returns the database key for a setting type.
func SettingKey(settingType string) string {
	return GenerateKey(PrefixSetting, settingType)
}

// NewSetting creates a setting with its key populated.
func NewSetting(settingType, value string) *Setting {
	return &Setting{
		Key:   SettingKey(settingType),
		Type:  settingType,
		Value: value,
	}
}
