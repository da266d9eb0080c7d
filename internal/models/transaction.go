package models

// TransactionStatus is the lifecycle state of a transaction.
// PENDING is the only state a callback may transition away from; the
// other three are terminal.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING"
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
	StatusExpired TransactionStatus = "EXPIRED"
)

// Product kinds carried in the reference id prefix.
const (
	ProdukTypeTopUp   = "TOPUP"
	ProdukTypeProduct = "PRODUCT"

	RefPrefixProduct = "PROD-"
	RefPrefixTopUp   = "TOPUP-"
)

// ProdukInfo describes what was ordered. For top-ups only Type is set;
// for product purchases NamaProduk and Kategori capture the catalog
// identity at order time.
type ProdukInfo struct {
	Type       string `json:"type" gorm:"column:produk_type;size:20;not null"`
	NamaProduk string `json:"nama_produk" gorm:"size:100"`
	Kategori   string `json:"kategori" gorm:"size:100"`
}

// Transaction is a pending or settled payment awaiting provider callback.
// Rows are created by the order-placement flow (the bot); this service
// only ever flips Status away from PENDING and records provenance.
type Transaction struct {
	BaseModel

	RefID      string            `json:"ref_id" gorm:"not null;size:64;uniqueIndex"`
	UserID     int64             `json:"user_id" gorm:"not null;index"`
	Status     TransactionStatus `json:"status" gorm:"not null;size:20;index;default:'PENDING'"`
	TotalBayar int64             `json:"total_bayar" gorm:"not null"` // minor units (Rupiah)

	ProdukInfo ProdukInfo `json:"produk_info" gorm:"embedded"`

	// VmpSignature records how the successful callback was trusted
	// (verified HMAC or allow-listed IP), for audit.
	VmpSignature string `json:"vmp_signature" gorm:"size:255"`
}

// TableName specifies the table name
func (Transaction) TableName() string {
	return "transactions"
}

// IsTopUp reports whether the transaction is a balance top-up.
func (t *Transaction) IsTopUp() bool {
	return t.ProdukInfo.Type == ProdukTypeTopUp
}
