package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

type collectorStub struct {
	mu       sync.Mutex
	sessions []types.SessionInit
	batches  []batchRequest
	status   int
}

func (c *collectorStub) handler(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.status != 0 {
			http.Error(w, "collector unavailable", c.status)
			return
		}

		switch r.URL.Path {
		case sessionPath:
			var init types.SessionInit
			require.NoError(t, json.NewDecoder(r.Body).Decode(&init))
			c.sessions = append(c.sessions, init)
			_ = json.NewEncoder(w).Encode(sessionResponse{SessionID: "sess-1"})
		case eventsPath:
			var batch batchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
			c.batches = append(c.batches, batch)
			w.WriteHeader(http.StatusAccepted)
		default:
			http.NotFound(w, r)
		}
	})
}

func TestHTTP_StartSession(t *testing.T) {
	stub := &collectorStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	tr := NewHTTP(srv.URL)

	id, err := tr.StartSession(context.Background(), types.SessionInit{
		FirstRoute: "/pricing",
		Referrer:   "https://news.example.com",
		UTM:        map[string]string{"utm_source": "newsletter"},
		Device:     "desktop",
		Country:    "DE",
	})
	require.NoError(t, err)
	require.Equal(t, "sess-1", id)

	require.Len(t, stub.sessions, 1)
	require.Equal(t, "/pricing", stub.sessions[0].FirstRoute)
	require.Equal(t, "newsletter", stub.sessions[0].UTM["utm_source"])
}

func TestHTTP_StartSessionServerError(t *testing.T) {
	stub := &collectorStub{status: http.StatusInternalServerError}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	tr := NewHTTP(srv.URL)

	_, err := tr.StartSession(context.Background(), types.SessionInit{FirstRoute: "/"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestHTTP_SendBatch(t *testing.T) {
	stub := &collectorStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	tr := NewHTTP(srv.URL)

	events := []types.Event{
		{Type: "click", Route: "/pricing", Element: "cta", CreatedAt: time.Now().UTC()},
		{Type: "section_view", Route: "/pricing", Section: "faq", CreatedAt: time.Now().UTC()},
	}
	err := tr.SendBatch(context.Background(), "sess-1", events, false)
	require.NoError(t, err)

	require.Len(t, stub.batches, 1)
	require.Equal(t, "sess-1", stub.batches[0].SessionID)
	require.Len(t, stub.batches[0].Events, 2)
	require.Equal(t, "click", stub.batches[0].Events[0].Type)
}

func TestHTTP_SendBatchEmpty(t *testing.T) {
	stub := &collectorStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	tr := NewHTTP(srv.URL)

	require.NoError(t, tr.SendBatch(context.Background(), "sess-1", nil, false))
	require.Empty(t, stub.batches)
}

func TestHTTP_DurableSendSurvivesCancelledContext(t *testing.T) {
	stub := &collectorStub{}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	tr := NewHTTP(srv.URL, WithDurableTimeout(2*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []types.Event{{Type: "click", Route: "/", CreatedAt: time.Now().UTC()}}
	err := tr.SendBatch(ctx, "sess-1", events, true)
	require.NoError(t, err)
	require.Len(t, stub.batches, 1)

	// The same cancelled context fails a non-durable send.
	err = tr.SendBatch(ctx, "sess-1", events, false)
	require.Error(t, err)
}

func TestHTTP_CustomHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		_ = json.NewEncoder(w).Encode(sessionResponse{SessionID: "sess-1"})
	}))
	defer srv.Close()

	tr := NewHTTP(srv.URL, WithHeader("X-Api-Key", "secret"))

	_, err := tr.StartSession(context.Background(), types.SessionInit{FirstRoute: "/"})
	require.NoError(t, err)
	require.Equal(t, "secret", gotKey)
}
