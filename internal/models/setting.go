package models

// Known setting keys.
const (
	SettingSuccessSticker = "success_sticker_id"
)

// Setting is an operational key/value pair maintained by the bot admin
// commands. The callback service only reads them.
type Setting struct {
	BaseModel

	Key   string `json:"key" gorm:"not null;size:64;uniqueIndex"`
	Value string `json:"value" gorm:"type:text"`
}

// TableName specifies the table name
func (Setting) TableName() string {
	return "settings"
}
