package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"LevelSentinel/internal/model"
	"LevelSentinel/internal/tracker"
)

type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeTelegram) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if f.fail {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var p map[string]string
			json.NewDecoder(r.Body).Decode(&p)
			f.mu.Lock()
			f.sent = append(f.sent, p["text"])
			f.mu.Unlock()
			fmt.Fprint(w, `{"ok":true}`)
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /levels "}},{"update_id":8}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	ft := &fakeTelegram{}
	n := testNotifier(ft.server(t))
	if err := n.SendWithRetry(context.Background(), "hello", 2); err != nil {
		t.Fatal(err)
	}
	if len(ft.sent) != 1 || ft.sent[0] != "hello" {
		t.Errorf("unexpected messages %v", ft.sent)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	ft := &fakeTelegram{fail: true}
	n := testNotifier(ft.server(t))
	if err := n.SendWithRetry(context.Background(), "hello", 0); err == nil {
		t.Fatal("expected error from failing API")
	}
}

func TestSendWithRetry_Cancelled(t *testing.T) {
	ft := &fakeTelegram{fail: true}
	n := testNotifier(ft.server(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.SendWithRetry(ctx, "hello", 3); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPoll_DispatchesCommands(t *testing.T) {
	ft := &fakeTelegram{}
	srv := ft.server(t)
	n := testNotifier(srv)

	var got []string
	next, err := n.poll(context.Background(), srv.Client(), 0, func(cmd string) string {
		got = append(got, cmd)
		return "board"
	})
	if err != nil {
		t.Fatal(err)
	}
	if next != 9 {
		t.Errorf("expected offset 9, got %d", next)
	}
	if len(got) != 1 || got[0] != "/levels" {
		t.Errorf("expected trimmed /levels, got %v", got)
	}
	if len(ft.sent) != 1 || ft.sent[0] != "board" {
		t.Errorf("expected reply to be sent, got %v", ft.sent)
	}
}

func TestFormatLevels(t *testing.T) {
	bar := model.Bar{Time: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), Close: 110}
	out := FormatLevels("ES", bar, []model.Level{
		{Tag: "PDH", Price: 100, Label: "Prev Day High"},
	}, time.UTC)
	for _, want := range []string{"ES levels", "2024-03-04 10:00 UTC", "PDH", "+10.00", "+10.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if !strings.Contains(FormatLevels("ES", bar, nil, time.UTC), "No levels yet") {
		t.Error("expected empty board message")
	}
}

func TestFormatSessionClose(t *testing.T) {
	snap := model.SessionSnapshot{Session: "London", Tag: "Lon", Open: 100, High: 110, Low: 90}
	out := FormatSessionClose(snap, 105, time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC), time.UTC)
	for _, want := range []string{"London session closed", "LonH: 110.00", "LonL: 90.00", "Range: 20.00", "75% of range"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatSessions(t *testing.T) {
	out := FormatSessions([]SessionStatus{
		{Name: "London", Tag: "Lon", Window: tracker.Window{Start: 8 * 3600, End: 16 * 3600}, Active: true},
		{Name: "Asia", Tag: "Asia", Window: tracker.Window{Start: 0, End: 8*3600 + 1800}},
	}, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), time.UTC)
	if !strings.Contains(out, "London (Lon): 08:00-16:00 open") || !strings.Contains(out, "Asia (Asia): 00:00-08:30 closed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
