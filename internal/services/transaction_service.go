package services

import (
	"context"
	"errors"
	"fmt"
	"vmp-callback/internal/models"

	"gorm.io/gorm"
)

// ErrTransactionNotFound is returned when no transaction exists for a
// reference id.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionService is the ledger of transactions keyed by reference
// id. TransitionIfPending is the single enforcement point of the
// callback idempotency guarantee.
type TransactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new transaction service
func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db}
}

// FindByRefID gets a transaction by reference id.
func (s *TransactionService) FindByRefID(ctx context.Context, refID string) (*models.Transaction, error) {
	var trx models.Transaction
	result := s.db.WithContext(ctx).Where("ref_id = ?", refID).First(&trx)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to load transaction %s: %w", refID, result.Error)
	}
	return &trx, nil
}

// TransitionIfPending atomically moves the transaction to newStatus if
// and only if it is still PENDING, recording provenance. The returned
// flag reports whether this call applied the change; concurrent or
// repeated callbacks for the same refID see applied == false and must
// skip side effects. The conditional UPDATE is what serializes
// concurrent deliveries, also across process instances.
func (s *TransactionService) TransitionIfPending(ctx context.Context, refID string, newStatus models.TransactionStatus, provenance string) (bool, *models.Transaction, error) {
	result := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("ref_id = ? AND status = ?", refID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":        newStatus,
			"vmp_signature": provenance,
		})
	if result.Error != nil {
		return false, nil, fmt.Errorf("failed to transition transaction %s: %w", refID, result.Error)
	}

	trx, err := s.FindByRefID(ctx, refID)
	if err != nil {
		return false, nil, err
	}

	return result.RowsAffected > 0, trx, nil
}
