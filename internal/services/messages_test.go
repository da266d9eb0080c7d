package services

import (
	"strings"
	"testing"
	"time"
	"vmp-callback/internal/models"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0"},
		{500, "500"},
		{1000, "1.000"},
		{50000, "50.000"},
		{1234567, "1.234.567"},
	}

	for _, tt := range tests {
		if got := formatRupiah(tt.amount); got != tt.want {
			t.Errorf("formatRupiah(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestPurchaseReceiptMessage(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	msg := purchaseReceiptMessage(25000, "PROD-7", "Netflix", "KEY1", now)

	for _, want := range []string{"Rp 25.000", "PROD-7", "Netflix", "1. KEY1", "5/3/2024, 14.07.09"} {
		if !strings.Contains(msg, want) {
			t.Errorf("receipt missing %q:\n%s", want, msg)
		}
	}
}

func TestCancellationMessageFallsBackForTopUps(t *testing.T) {
	msg := cancellationMessage("", "TOPUP-1")
	if !strings.Contains(msg, "Top Up Saldo") {
		t.Errorf("expected top-up fallback label, got %q", msg)
	}
}

func TestSaleChannelMessageStockNumbers(t *testing.T) {
	msg := saleChannelMessage(42, "Netflix", 25000, 0, "PROD-7")
	if !strings.Contains(msg, "`0` pcs (dari 1)") {
		t.Errorf("expected remaining/initial stock pair, got %q", msg)
	}
}

func TestTopUpChannelMessageLinksUser(t *testing.T) {
	user := &models.User{UserID: 42, Username: "budi"}
	msg := topUpChannelMessage(user, 50000, "TOPUP-1")
	if !strings.Contains(msg, "tg://user?id=42") || !strings.Contains(msg, "budi") {
		t.Errorf("expected user mention, got %q", msg)
	}
}
