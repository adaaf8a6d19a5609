package realtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dan9191/finance-insights/internal/middleware"
	"github.com/Dan9191/finance-insights/internal/models"
	"github.com/Dan9191/finance-insights/internal/service"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type countingSnapshots struct {
	calls atomic.Int64
}

func (s *countingSnapshots) Snapshot(_ context.Context, userID string) (*service.Snapshot, error) {
	n := s.calls.Add(1)
	return &service.Snapshot{
		Stats:   models.IncomeExpenseStats{TotalIncome: float64(n)},
		Metrics: models.FinancialMetrics{TopCategory: models.NoTopCategory, TransactionCount: int(n)},
	}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestParseEvent(t *testing.T) {
	ev, err := parseEvent(`{"user_id":"u1","op":"insert","id":"t1"}`)
	if err != nil || ev.UserID != "u1" || ev.Op != "insert" || ev.ID != "t1" {
		t.Fatalf("unexpected event %+v (%v)", ev, err)
	}

	for _, bad := range []string{"", "not json", `{"op":"delete"}`} {
		if _, err := parseEvent(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func dial(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r.WithContext(middleware.WithUserID(r.Context(), userID)))
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("bad message %s: %v", raw, err)
	}
	return msg
}

func TestHubPushesOnConnectEventAndPublish(t *testing.T) {
	snaps := &countingSnapshots{}
	hub := NewHub(snaps, quietLogger())
	events := make(chan Event, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, events)

	conn := dial(t, hub, "alice")

	first := readMessage(t, conn)
	if first["type"] != "metrics" {
		t.Fatalf("unexpected message %v", first)
	}
	if _, ok := first["stats"]; !ok {
		t.Fatalf("snapshot fields should be inlined: %v", first)
	}

	events <- Event{UserID: "alice", Op: "insert"}
	second := readMessage(t, conn)
	if second["stats"].(map[string]any)["totalIncome"].(float64) < 2 {
		t.Fatalf("expected a fresh snapshot, got %v", second)
	}

	hub.Publish("alice")
	readMessage(t, conn)

	events <- Event{Op: "resync"}
	readMessage(t, conn)
}

func TestHubSkipsUsersWithoutSubscribers(t *testing.T) {
	snaps := &countingSnapshots{}
	hub := NewHub(snaps, quietLogger())

	hub.push(context.Background(), "nobody")
	if snaps.calls.Load() != 0 {
		t.Fatalf("snapshot computed for a user with no subscribers")
	}
}

func TestHubUnregistersOnClose(t *testing.T) {
	hub := NewHub(&countingSnapshots{}, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, nil)

	conn := dial(t, hub, "bob")
	readMessage(t, conn)
	if hub.Subscribers("bob") != 1 {
		t.Fatalf("want 1 subscriber got %d", hub.Subscribers("bob"))
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for hub.Subscribers("bob") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not removed after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
