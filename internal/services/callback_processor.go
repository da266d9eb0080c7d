package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"vmp-callback/internal/models"
	"vmp-callback/pkg/logging"
)

// Notifier dispatches messages to buyers and the operations channel.
// Implementations are best-effort; the processor logs errors but never
// lets them affect an already committed ledger mutation.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, text string) error
	NotifySticker(ctx context.Context, userID int64, fileID string) error
	NotifyChannel(ctx context.Context, text string) error
}

// OperatorAlerter surfaces reconciliation gaps to operators out of
// band. Best-effort, no error return.
type OperatorAlerter interface {
	Alert(ctx context.Context, subject, body string)
}

// Outcome summarizes how an inbound callback was handled. Whatever the
// outcome, the HTTP layer always acknowledges with 200 {status:true} so
// the provider never retries a case we intentionally do not act on.
type Outcome string

const (
	OutcomeResolved            Outcome = "resolved"
	OutcomeIgnoredIncomplete   Outcome = "ignored_incomplete"
	OutcomeIgnoredUnrecognized Outcome = "ignored_unrecognized_ref"
	OutcomeIgnoredUntrusted    Outcome = "ignored_untrusted_origin"
	OutcomeIgnoredUnknownTrx   Outcome = "ignored_unknown_transaction"
	OutcomeIgnoredResolved     Outcome = "ignored_already_resolved"
	OutcomeIgnoredStatus       Outcome = "ignored_unknown_status"
	OutcomeIgnoredInternal     Outcome = "ignored_internal_error"
)

// InboundCallback is one raw provider notification as received by the
// HTTP layer.
type InboundCallback struct {
	ClientIP string
	Fields   map[string]string
	Header   http.Header
	RawBody  []byte
}

// CallbackProcessor runs the per-callback state machine: normalize,
// authenticate, look up the transaction, apply the idempotent status
// transition, fulfill, then notify. Fulfillment is committed before the
// processor returns; notifications are dispatched afterwards without
// blocking the acknowledgment.
type CallbackProcessor struct {
	auth         *OriginAuthenticator
	transactions *TransactionService
	fulfillment  *FulfillmentService
	settings     *SettingService
	notifier     Notifier
	alerts       OperatorAlerter

	// dispatch runs post-commit notification work. Replaced with a
	// synchronous call in tests.
	dispatch func(func())
}

// NewCallbackProcessor creates a new callback processor. alerts may be
// nil when operator email is not configured.
func NewCallbackProcessor(
	auth *OriginAuthenticator,
	transactions *TransactionService,
	fulfillment *FulfillmentService,
	settings *SettingService,
	notifier Notifier,
	alerts OperatorAlerter,
) *CallbackProcessor {
	return &CallbackProcessor{
		auth:         auth,
		transactions: transactions,
		fulfillment:  fulfillment,
		settings:     settings,
		notifier:     notifier,
		alerts:       alerts,
		dispatch:     func(fn func()) { go fn() },
	}
}

// Process handles one inbound callback end to end and reports the
// outcome. It never returns an error: internal failures are logged and
// collapse into an ignore outcome, because the transition is idempotent
// and the response contract is fixed either way.
func (p *CallbackProcessor) Process(ctx context.Context, in InboundCallback) Outcome {
	norm, err := NormalizeCallback(in.Fields, in.Header)
	if err != nil {
		switch {
		case errors.Is(err, ErrIncomplete):
			logging.Infof("Skipping callback from %s: ref id or status missing", in.ClientIP)
			return OutcomeIgnoredIncomplete
		case errors.Is(err, ErrUnrecognizedFormat):
			logging.Infof("Skipping callback from %s: unrecognized ref id format", in.ClientIP)
			return OutcomeIgnoredUnrecognized
		default:
			logging.Errorf("Failed to normalize callback from %s: %v", in.ClientIP, err)
			return OutcomeIgnoredInternal
		}
	}

	logging.Infof("Callback received - ip: %s, ref: %s, status: %s", in.ClientIP, norm.RefID, norm.Status)

	if !p.auth.Authenticate(in.ClientIP, in.RawBody, norm.Signature) {
		logging.Infof("Rejected callback for %s: origin %s not trusted", norm.RefID, in.ClientIP)
		return OutcomeIgnoredUntrusted
	}

	trx, err := p.transactions.FindByRefID(ctx, norm.RefID)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			logging.Infof("No transaction for ref %s, skipping", norm.RefID)
			return OutcomeIgnoredUnknownTrx
		}
		logging.Errorf("Failed to look up transaction %s: %v", norm.RefID, err)
		return OutcomeIgnoredInternal
	}

	if trx.Status != models.StatusPending {
		logging.Infof("Transaction %s already %s, skipping", trx.RefID, trx.Status)
		return OutcomeIgnoredResolved
	}

	switch norm.Status {
	case "success":
		return p.resolveSuccess(ctx, norm.RefID, in.ClientIP)
	case "failed":
		return p.resolveCancelled(ctx, norm.RefID, models.StatusFailed)
	case "expired":
		return p.resolveCancelled(ctx, norm.RefID, models.StatusExpired)
	default:
		logging.Infof("Unknown callback status %q for %s, skipping", norm.Status, norm.RefID)
		return OutcomeIgnoredStatus
	}
}

// resolveSuccess applies the SUCCESS transition and, when this call won
// the transition, fulfills the order and queues notifications.
func (p *CallbackProcessor) resolveSuccess(ctx context.Context, refID, clientIP string) Outcome {
	applied, trx, err := p.transactions.TransitionIfPending(ctx, refID, models.StatusSuccess, p.auth.Provenance(clientIP))
	if err != nil {
		logging.Errorf("Failed to resolve transaction %s: %v", refID, err)
		return OutcomeIgnoredInternal
	}
	if !applied {
		logging.Infof("Transaction %s resolved concurrently, skipping side effects", refID)
		return OutcomeIgnoredResolved
	}

	result, err := p.fulfillment.Fulfill(ctx, trx)
	if err != nil {
		// Payment is committed as SUCCESS; a store failure here is a
		// reconciliation gap for operators, not a rollback.
		logging.Errorf("Fulfillment failed for %s after SUCCESS transition: %v", refID, err)
		p.alert("Fulfillment error", fmt.Sprintf("Transaction %s was marked SUCCESS but fulfillment failed: %v. Resolve manually.", refID, err))
		return OutcomeResolved
	}

	stickerID, err := p.settings.Get(ctx, models.SettingSuccessSticker)
	if err != nil {
		logging.Errorf("Failed to load success sticker setting: %v", err)
		stickerID = ""
	}

	p.dispatch(func() {
		p.notifySuccess(context.Background(), trx, result, stickerID)
	})

	return OutcomeResolved
}

// resolveCancelled applies a FAILED or EXPIRED transition and notifies
// the buyer of the cancellation.
func (p *CallbackProcessor) resolveCancelled(ctx context.Context, refID string, newStatus models.TransactionStatus) Outcome {
	applied, trx, err := p.transactions.TransitionIfPending(ctx, refID, newStatus, "")
	if err != nil {
		logging.Errorf("Failed to cancel transaction %s: %v", refID, err)
		return OutcomeIgnoredInternal
	}
	if !applied {
		logging.Infof("Transaction %s resolved concurrently, skipping cancellation notice", refID)
		return OutcomeIgnoredResolved
	}

	p.dispatch(func() {
		ctx := context.Background()
		if err := p.notifier.NotifyUser(ctx, trx.UserID, cancellationMessage(trx.ProdukInfo.NamaProduk, trx.RefID)); err != nil {
			logging.Errorf("Failed to send cancellation notice for %s: %v", trx.RefID, err)
		}
	})

	return OutcomeResolved
}

// notifySuccess fans out the post-fulfillment messages. Runs after the
// ledger and stock mutations are committed; every send is best-effort.
func (p *CallbackProcessor) notifySuccess(ctx context.Context, trx *models.Transaction, result *FulfillmentResult, stickerID string) {
	switch result.Status {
	case FulfillmentCredited:
		p.notifyChannel(ctx, topUpChannelMessage(result.User, trx.TotalBayar, trx.RefID))
		p.sendSticker(ctx, trx.UserID, stickerID)
		p.notifyUser(ctx, trx.UserID, topUpSuccessMessage(result.User.Saldo))

	case FulfillmentUserMissing:
		logging.Errorf("Top-up %s succeeded but user %d has no record", trx.RefID, trx.UserID)
		p.alert("Top-up user missing", fmt.Sprintf("Transaction %s is SUCCESS but user %d was not found; balance not credited. Resolve manually.", trx.RefID, trx.UserID))

	case FulfillmentDelivered:
		p.notifyChannel(ctx, saleChannelMessage(trx.UserID, result.Product.NamaProduk, trx.TotalBayar, result.Product.Stok, trx.RefID))
		p.sendSticker(ctx, trx.UserID, stickerID)
		p.notifyUser(ctx, trx.UserID, purchaseReceiptMessage(trx.TotalBayar, trx.RefID, result.Product.NamaProduk, result.Content, time.Now()))

	case FulfillmentOutOfStock:
		logging.Errorf("Product %s sold out before delivery of %s", result.Product.NamaProduk, trx.RefID)
		p.notifyChannel(ctx, outOfStockChannelMessage(result.Product.NamaProduk, trx.RefID))
		p.notifyUser(ctx, trx.UserID, outOfStockMessage(trx.RefID))
		p.alert("Stock exhausted at delivery", fmt.Sprintf("Transaction %s is SUCCESS but product %q/%q had no content left. Deliver manually.", trx.RefID, trx.ProdukInfo.NamaProduk, trx.ProdukInfo.Kategori))

	case FulfillmentProductMissing:
		logging.Errorf("Product %q/%q not found during callback for %s", trx.ProdukInfo.NamaProduk, trx.ProdukInfo.Kategori, trx.RefID)
		p.notifyUser(ctx, trx.UserID, productMissingMessage(trx.RefID, trx.ProdukInfo.NamaProduk))
		p.alert("Product missing at fulfillment", fmt.Sprintf("Transaction %s is SUCCESS but product %q/%q no longer exists in the catalog. Resolve manually.", trx.RefID, trx.ProdukInfo.NamaProduk, trx.ProdukInfo.Kategori))
	}
}

func (p *CallbackProcessor) notifyUser(ctx context.Context, userID int64, text string) {
	if err := p.notifier.NotifyUser(ctx, userID, text); err != nil {
		logging.Errorf("Failed to notify user %d: %v", userID, err)
	}
}

func (p *CallbackProcessor) sendSticker(ctx context.Context, userID int64, stickerID string) {
	if stickerID == "" {
		return
	}
	if err := p.notifier.NotifySticker(ctx, userID, stickerID); err != nil {
		logging.Errorf("Failed to send sticker to user %d: %v", userID, err)
	}
}

func (p *CallbackProcessor) notifyChannel(ctx context.Context, text string) {
	if err := p.notifier.NotifyChannel(ctx, text); err != nil {
		p.alert("Channel notification failed", fmt.Sprintf("Could not post to the operations channel: %v\n\nMessage:\n%s", err, text))
	}
}

func (p *CallbackProcessor) alert(subject, body string) {
	if p.alerts == nil {
		return
	}
	p.alerts.Alert(context.Background(), subject, body)
}
