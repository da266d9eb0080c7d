package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ContentQueue is the ordered deliverable content of a product (license
// keys, account credentials, ...), consumed front-to-back. Stored as a
// JSON array in a text column.
type ContentQueue []string

// Value implements driver.Valuer.
func (q ContentQueue) Value() (driver.Value, error) {
	if q == nil {
		q = ContentQueue{}
	}
	data, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (q *ContentQueue) Scan(src interface{}) error {
	if src == nil {
		*q = ContentQueue{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ContentQueue", src)
	}
	if len(data) == 0 {
		*q = ContentQueue{}
		return nil
	}
	return json.Unmarshal(data, q)
}

// Head returns the next deliverable item without removing it.
func (q ContentQueue) Head() (string, bool) {
	if len(q) == 0 {
		return "", false
	}
	return q[0], true
}

// Rest returns the queue with the head removed.
func (q ContentQueue) Rest() ContentQueue {
	if len(q) == 0 {
		return ContentQueue{}
	}
	return q[1:]
}

// Product is a catalog entry with sequential digital content. Stok must
// equal len(KontenProduk) at all times; the fulfillment service is the
// only writer of that pair and updates both in a single statement.
type Product struct {
	BaseModel

	NamaProduk string `json:"nama_produk" gorm:"not null;size:100;index:idx_product_identity"`
	Kategori   string `json:"kategori" gorm:"not null;size:100;index:idx_product_identity"`

	KontenProduk ContentQueue `json:"konten_produk" gorm:"type:text"`
	Stok         int          `json:"stok" gorm:"not null;default:0"`
	TotalTerjual int          `json:"total_terjual" gorm:"not null;default:0"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}
