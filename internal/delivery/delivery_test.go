package delivery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// go test -v --run TestTelegramDeliver
func TestTelegramDeliver(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotChat = r.URL.Query().Get("chat_id")
		gotText = r.URL.Query().Get("text")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	tg, err := NewTelegram(srv.URL, "123:abc", "-10042", time.Second)
	require.NoError(t, err)

	text := "Global Long-Short Ratio\nLong: 53.21% (+1.11)\nShort: 46.79% (-1.11) & more"
	require.NoError(t, tg.Deliver(context.Background(), text))

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "-10042", gotChat)
	assert.Equal(t, text, gotText)
}

func TestTelegramDeliverAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg, err := NewTelegram(srv.URL, "123:abc", "1", time.Second)
	require.NoError(t, err)

	err = tg.Deliver(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tg, err := NewTelegram(url, "123:secret", "1", time.Second)
	require.NoError(t, err)

	err = tg.Deliver(context.Background(), "hello")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestTelegramBadBaseURLHidesToken(t *testing.T) {
	tg, err := NewTelegram("http://api.telegram\x7f.org", "123:secret", "1", time.Second)
	require.NoError(t, err)

	err = tg.Deliver(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating request")
	assert.NotContains(t, err.Error(), "secret")
}

func TestTelegramSkipsEmptyText(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	tg, err := NewTelegram(srv.URL, "t", "c", time.Second)
	require.NoError(t, err)
	require.NoError(t, tg.Deliver(context.Background(), ""))
	assert.False(t, called)
}

func TestNewTelegramRequiresCredentials(t *testing.T) {
	_, err := NewTelegram("https://api.telegram.org", "", "1", time.Second)
	assert.Error(t, err)
	_, err = NewTelegram("https://api.telegram.org", "t", "", time.Second)
	assert.Error(t, err)
}

func relayServer(t *testing.T) (string, <-chan RelayMessage) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	received := make(chan RelayMessage, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var msg RelayMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			received <- msg
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), received
}

// go test -v --run TestRelayDeliver
func TestRelayDeliver(t *testing.T) {
	url, received := relayServer(t)

	relay := NewRelay(url, "BTCUSDT", time.Second, time.Second, zap.NewNop())
	relay.now = func() time.Time { return time.Date(2024, 11, 24, 10, 5, 0, 0, time.UTC) }
	defer relay.Close()

	require.NoError(t, relay.Deliver(context.Background(), "first"))
	require.NoError(t, relay.Deliver(context.Background(), "second"))

	for _, want := range []string{"first", "second"} {
		select {
		case msg := <-received:
			assert.Equal(t, "report", msg.Type)
			assert.Equal(t, "BTCUSDT", msg.Symbol)
			assert.Equal(t, want, msg.Text)
			assert.True(t, msg.GeneratedAt.Equal(time.Date(2024, 11, 24, 10, 5, 0, 0, time.UTC)))
		case <-time.After(2 * time.Second):
			t.Fatalf("relay did not receive %q", want)
		}
	}
}

func TestRelayDialFailure(t *testing.T) {
	relay := NewRelay("ws://127.0.0.1:1/reports", "BTCUSDT", 200*time.Millisecond, time.Second, zap.NewNop())
	err := relay.Deliver(context.Background(), "hello")
	assert.Error(t, err)
	assert.NoError(t, relay.Close())
}

type recordingSink struct {
	name string
	err  error

	mu    sync.Mutex
	texts []string
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.err
}

func TestMultiDeliversToEverySink(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("unreachable")}
	ok := &recordingSink{name: "ok"}
	m := NewMulti(zap.NewNop(), broken, ok)

	results := map[string]error{}
	err := m.DeliverEach(context.Background(), "report", func(sink string, err error) {
		results[sink] = err
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: unreachable")
	assert.Equal(t, []string{"report"}, broken.texts)
	assert.Equal(t, []string{"report"}, ok.texts)
	assert.Error(t, results["broken"])
	assert.NoError(t, results["ok"])
	assert.Equal(t, 2, m.Len())
}
