package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"vmp-callback/pkg/logging"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

// TelegramNotifier delivers messages and stickers to buyers and the
// operations channel through the Telegram Bot API. Every send is
// best-effort: failures are logged and returned, never retried here.
type TelegramNotifier struct {
	httpClient *http.Client
	baseURL    string
	token      string
	channelID  string
	adminIDs   []int64
}

// NewTelegramNotifier creates a new Telegram notifier. An empty token
// turns every send into a no-op, which keeps local development quiet.
func NewTelegramNotifier(token, channelID string, adminIDs []int64) *TelegramNotifier {
	return &TelegramNotifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   defaultTelegramAPIBase,
		token:     token,
		channelID: channelID,
		adminIDs:  adminIDs,
	}
}

// NotifyUser sends a Markdown message to the buyer's chat.
func (n *TelegramNotifier) NotifyUser(ctx context.Context, userID int64, text string) error {
	return n.sendMessage(ctx, strconv.FormatInt(userID, 10), text)
}

// NotifySticker sends a sticker to the buyer's chat.
func (n *TelegramNotifier) NotifySticker(ctx context.Context, userID int64, fileID string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(userID, 10))
	params.Set("sticker", fileID)
	return n.call(ctx, "sendSticker", params)
}

// NotifyChannel posts to the operations channel. On failure it makes a
// single best-effort attempt to alert the first configured admin so the
// misconfiguration (bot not admin in channel, wrong id) gets seen.
func (n *TelegramNotifier) NotifyChannel(ctx context.Context, text string) error {
	if n.channelID == "" {
		return nil
	}

	err := n.sendMessage(ctx, n.channelID, text)
	if err == nil {
		return nil
	}

	logging.Errorf("Failed to send channel notification to %s: %v", n.channelID, err)
	if len(n.adminIDs) > 0 {
		if adminErr := n.NotifyUser(ctx, n.adminIDs[0], channelFailureAlertMessage(n.channelID, err)); adminErr != nil {
			logging.Errorf("Failed to alert admin %d about channel failure: %v", n.adminIDs[0], adminErr)
		}
	}
	return err
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, chatID, text string) error {
	params := url.Values{}
	params.Set("chat_id", chatID)
	params.Set("text", text)
	params.Set("parse_mode", "Markdown")
	return n.call(ctx, "sendMessage", params)
}

func (n *TelegramNotifier) call(ctx context.Context, method string, params url.Values) error {
	if n.token == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", n.baseURL, n.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}

	return nil
}
