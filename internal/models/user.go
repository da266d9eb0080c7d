package models

// User is a store customer. UserID is the Telegram chat id and the key
// the callback flow uses; Saldo is the balance in Rupiah minor units,
// only ever increased by a successful top-up.
type User struct {
	BaseModel

	UserID         int64  `json:"user_id" gorm:"not null;uniqueIndex"`
	Username       string `json:"username" gorm:"size:100"`
	Saldo          int64  `json:"saldo" gorm:"not null;default:0"`
	TotalTransaksi int    `json:"total_transaksi" gorm:"not null;default:0"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
