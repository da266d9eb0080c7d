package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type telegramCall struct {
	path   string
	params url.Values
}

// newTelegramTestServer fakes the Bot API, failing any request whose
// chat_id appears in failChats.
func newTelegramTestServer(t *testing.T, failChats map[string]bool) (*httptest.Server, func() []telegramCall) {
	t.Helper()

	var mu sync.Mutex
	var calls []telegramCall

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		mu.Lock()
		calls = append(calls, telegramCall{path: r.URL.Path, params: r.PostForm})
		mu.Unlock()

		if failChats[r.PostForm.Get("chat_id")] {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	return server, func() []telegramCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]telegramCall(nil), calls...)
	}
}

func TestNotifyUserPostsMessage(t *testing.T) {
	server, getCalls := newTelegramTestServer(t, nil)
	n := NewTelegramNotifier("TESTTOKEN", "", nil)
	n.baseURL = server.URL

	if err := n.NotifyUser(context.Background(), 42, "halo"); err != nil {
		t.Fatalf("NotifyUser returned error: %v", err)
	}

	calls := getCalls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].path != "/botTESTTOKEN/sendMessage" {
		t.Errorf("path = %q", calls[0].path)
	}
	if got := calls[0].params.Get("chat_id"); got != "42" {
		t.Errorf("chat_id = %q, want 42", got)
	}
	if got := calls[0].params.Get("text"); got != "halo" {
		t.Errorf("text = %q", got)
	}
	if got := calls[0].params.Get("parse_mode"); got != "Markdown" {
		t.Errorf("parse_mode = %q, want Markdown", got)
	}
}

func TestNotifyStickerPostsFileID(t *testing.T) {
	server, getCalls := newTelegramTestServer(t, nil)
	n := NewTelegramNotifier("TESTTOKEN", "", nil)
	n.baseURL = server.URL

	if err := n.NotifySticker(context.Background(), 42, "STICKER-1"); err != nil {
		t.Fatalf("NotifySticker returned error: %v", err)
	}

	calls := getCalls()
	if len(calls) != 1 || calls[0].path != "/botTESTTOKEN/sendSticker" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
	if got := calls[0].params.Get("sticker"); got != "STICKER-1" {
		t.Errorf("sticker = %q", got)
	}
}

func TestNotifyChannelFallsBackToFirstAdmin(t *testing.T) {
	server, getCalls := newTelegramTestServer(t, map[string]bool{"-100500": true})
	n := NewTelegramNotifier("TESTTOKEN", "-100500", []int64{7, 8})
	n.baseURL = server.URL

	if err := n.NotifyChannel(context.Background(), "laporan"); err == nil {
		t.Fatal("NotifyChannel should report the channel failure")
	}

	calls := getCalls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want channel attempt plus one admin alert", len(calls))
	}
	if got := calls[1].params.Get("chat_id"); got != "7" {
		t.Errorf("fallback chat_id = %q, want first admin", got)
	}
}

func TestNotifierWithoutTokenIsNoop(t *testing.T) {
	server, getCalls := newTelegramTestServer(t, nil)
	n := NewTelegramNotifier("", "-100500", []int64{7})
	n.baseURL = server.URL

	if err := n.NotifyUser(context.Background(), 42, "halo"); err != nil {
		t.Fatalf("NotifyUser returned error: %v", err)
	}
	if err := n.NotifyChannel(context.Background(), "laporan"); err != nil {
		t.Fatalf("NotifyChannel returned error: %v", err)
	}
	if calls := getCalls(); len(calls) != 0 {
		t.Errorf("calls = %d, want none without a token", len(calls))
	}
}
