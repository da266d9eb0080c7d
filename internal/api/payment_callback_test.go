package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"vmp-callback/internal/models"
	"vmp-callback/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const trustedIP = "1.2.3.4"

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) NotifyUser(ctx context.Context, userID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

func (r *recordingNotifier) NotifySticker(ctx context.Context, userID int64, fileID string) error {
	return nil
}

func (r *recordingNotifier) NotifyChannel(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Transaction{}, &models.Product{}, &models.User{}, &models.Setting{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	processor := services.NewCallbackProcessor(
		services.NewOriginAuthenticator([]string{trustedIP}, "", false),
		services.NewTransactionService(db),
		services.NewFulfillmentService(db),
		services.NewSettingService(db, nil, time.Minute),
		&recordingNotifier{},
		nil,
	)

	r := gin.New()
	SetupRoutes(r, NewCallbackHandler(processor))
	return r, db
}

func postCallback(r *gin.Engine, body, contentType, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/violet-callback", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func assertAck(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"status":true}` {
		t.Errorf("body = %s, want {\"status\":true}", body)
	}
}

func seedPendingTopUp(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Create(&models.User{UserID: 42, Username: "budi"}).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	if err := db.Create(&models.Transaction{
		RefID:      "TOPUP-1",
		UserID:     42,
		Status:     models.StatusPending,
		TotalBayar: 50000,
		ProdukInfo: models.ProdukInfo{Type: models.ProdukTypeTopUp},
	}).Error; err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}
}

func TestCallbackFormBodyResolvesTransaction(t *testing.T) {
	r, db := newTestRouter(t)
	seedPendingTopUp(t, db)

	w := postCallback(r, "ref=TOPUP-1&status=success", "application/x-www-form-urlencoded", trustedIP)
	assertAck(t, w)

	var trx models.Transaction
	if err := db.Where("ref_id = ?", "TOPUP-1").First(&trx).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if trx.Status != models.StatusSuccess {
		t.Errorf("Status = %s, want SUCCESS", trx.Status)
	}

	var user models.User
	if err := db.Where("user_id = ?", 42).First(&user).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.Saldo != 50000 {
		t.Errorf("Saldo = %d, want 50000", user.Saldo)
	}
}

func TestCallbackJSONBodyResolvesTransaction(t *testing.T) {
	r, db := newTestRouter(t)
	seedPendingTopUp(t, db)

	w := postCallback(r, `{"ref_id":"TOPUP-1","status":"SUCCESS","sign":"abc"}`, "application/json", trustedIP)
	assertAck(t, w)

	var trx models.Transaction
	if err := db.Where("ref_id = ?", "TOPUP-1").First(&trx).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if trx.Status != models.StatusSuccess {
		t.Errorf("Status = %s, want SUCCESS", trx.Status)
	}
}

func TestCallbackAlwaysAcknowledges(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"empty body", "", "application/x-www-form-urlencoded"},
		{"broken json", `{"ref":`, "application/json"},
		{"unknown transaction", "ref=TOPUP-404&status=success", "application/x-www-form-urlencoded"},
		{"unknown status", "ref=TOPUP-1&status=refunded", "application/x-www-form-urlencoded"},
		{"bad prefix", "ref=ORDER-1&status=success", "application/x-www-form-urlencoded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAck(t, postCallback(r, tt.body, tt.contentType, trustedIP))
		})
	}
}

func TestCallbackUntrustedOriginIsAcknowledgedButInert(t *testing.T) {
	r, db := newTestRouter(t)
	seedPendingTopUp(t, db)

	// No forwarded header: the request appears to come from the
	// httptest peer address, which is not allow-listed.
	w := postCallback(r, "ref=TOPUP-1&status=success", "application/x-www-form-urlencoded", "")
	assertAck(t, w)

	var trx models.Transaction
	if err := db.Where("ref_id = ?", "TOPUP-1").First(&trx).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if trx.Status != models.StatusPending {
		t.Errorf("Status = %s, want still PENDING", trx.Status)
	}
}

func TestCallbackForwardedForFirstEntryWins(t *testing.T) {
	r, db := newTestRouter(t)
	seedPendingTopUp(t, db)

	w := postCallback(r, "ref=TOPUP-1&status=success", "application/x-www-form-urlencoded", trustedIP+", 10.0.0.1")
	assertAck(t, w)

	var trx models.Transaction
	if err := db.Where("ref_id = ?", "TOPUP-1").First(&trx).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if trx.Status != models.StatusSuccess {
		t.Errorf("Status = %s, want SUCCESS via first forwarded entry", trx.Status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("body = %s", w.Body.String())
	}
}
