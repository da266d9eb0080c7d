package services

import (
	"context"
	"errors"
	"fmt"
	"vmp-callback/internal/models"

	"gorm.io/gorm"
)

// FulfillmentStatus classifies the outcome of fulfilling a successful
// transaction. The non-happy cases are reconciliation gaps surfaced to
// operators, never rollbacks: the payment is real and the transaction
// stays SUCCESS.
type FulfillmentStatus string

const (
	FulfillmentCredited       FulfillmentStatus = "CREDITED"
	FulfillmentDelivered      FulfillmentStatus = "DELIVERED"
	FulfillmentOutOfStock     FulfillmentStatus = "OUT_OF_STOCK"
	FulfillmentProductMissing FulfillmentStatus = "PRODUCT_MISSING"
	FulfillmentUserMissing    FulfillmentStatus = "USER_MISSING"
)

// FulfillmentResult carries the outcome plus whatever the notifier
// needs for messaging: the credited user, the delivered content and the
// product state after the stock mutation.
type FulfillmentResult struct {
	Status  FulfillmentStatus
	User    *models.User
	Product *models.Product
	Content string
}

// FulfillmentService performs the type-specific side effect of a
// successful transaction: balance credit for top-ups, atomic stock
// decrement plus content pop for product purchases. It owns the
// invariant that Product.Stok equals len(Product.KontenProduk).
type FulfillmentService struct {
	db *gorm.DB
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(db *gorm.DB) *FulfillmentService {
	return &FulfillmentService{db: db}
}

// Fulfill branches on the transaction's product kind. It performs no
// network calls; notification is the caller's job.
func (s *FulfillmentService) Fulfill(ctx context.Context, trx *models.Transaction) (*FulfillmentResult, error) {
	if trx.IsTopUp() {
		return s.creditBalance(ctx, trx)
	}
	return s.dispenseContent(ctx, trx)
}

// creditBalance atomically increments the user's saldo by the paid
// amount and bumps the transaction counter.
func (s *FulfillmentService) creditBalance(ctx context.Context, trx *models.Transaction) (*FulfillmentResult, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", trx.UserID).
		Updates(map[string]interface{}{
			"saldo":           gorm.Expr("saldo + ?", trx.TotalBayar),
			"total_transaksi": gorm.Expr("total_transaksi + 1"),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to credit balance for user %d: %w", trx.UserID, result.Error)
	}
	if result.RowsAffected == 0 {
		return &FulfillmentResult{Status: FulfillmentUserMissing}, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", trx.UserID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %d after credit: %w", trx.UserID, err)
	}

	return &FulfillmentResult{Status: FulfillmentCredited, User: &user}, nil
}

// maxDispenseAttempts bounds the optimistic retry loop when two
// fulfillments race on the same product.
const maxDispenseAttempts = 3

// dispenseContent resolves the product by its catalog identity captured
// at order time (name + category, not id: entries can be re-created
// between order and callback), then pops the head of the content queue
// while adjusting stok and total_terjual in one guarded update. The
// stok predicate acts as a version check, so two concurrent callbacks
// can never deliver the same head element.
func (s *FulfillmentService) dispenseContent(ctx context.Context, trx *models.Transaction) (*FulfillmentResult, error) {
	for attempt := 0; attempt < maxDispenseAttempts; attempt++ {
		var product models.Product
		err := s.db.WithContext(ctx).
			Where("nama_produk = ? AND kategori = ?", trx.ProdukInfo.NamaProduk, trx.ProdukInfo.Kategori).
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &FulfillmentResult{Status: FulfillmentProductMissing}, nil
			}
			return nil, fmt.Errorf("failed to load product %q/%q: %w", trx.ProdukInfo.NamaProduk, trx.ProdukInfo.Kategori, err)
		}

		head, ok := product.KontenProduk.Head()
		if !ok {
			return &FulfillmentResult{Status: FulfillmentOutOfStock, Product: &product}, nil
		}

		rest := product.KontenProduk.Rest()
		result := s.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND stok = ?", product.ID, product.Stok).
			Updates(map[string]interface{}{
				"konten_produk": rest,
				"stok":          gorm.Expr("stok - 1"),
				"total_terjual": gorm.Expr("total_terjual + 1"),
			})
		if result.Error != nil {
			return nil, fmt.Errorf("failed to dispense content for product %d: %w", product.ID, result.Error)
		}
		if result.RowsAffected > 0 {
			product.KontenProduk = rest
			product.Stok--
			product.TotalTerjual++
			return &FulfillmentResult{Status: FulfillmentDelivered, Product: &product, Content: head}, nil
		}
		// Lost the race against a concurrent fulfillment, reload and retry.
	}

	return nil, fmt.Errorf("giving up dispensing product %q/%q after %d contended attempts",
		trx.ProdukInfo.NamaProduk, trx.ProdukInfo.Kategori, maxDispenseAttempts)
}
