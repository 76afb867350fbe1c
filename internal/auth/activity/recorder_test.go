package activity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store/drivers/sqlite"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
	err     error
	block   chan struct{}
}

func (s *memorySink) Write(_ context.Context, e domain.ActivityEntry) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return s.err
}

func (s *memorySink) All() []domain.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ActivityEntry(nil), s.entries...)
}

func TestAsyncRecorder_DeliversToEverySink(t *testing.T) {
	a, b := &memorySink{}, &memorySink{err: errors.New("boom")}
	r := NewAsyncRecorder(slogx.Discard(), 8, a, b)
	fixed := time.Date(2026, time.June, 2, 8, 0, 0, 0, time.UTC)
	r.Now = func() time.Time { return fixed }
	r.Start()

	ctx := WithRequestInfo(context.Background(), RequestInfo{IPAddress: "203.0.113.7", UserAgent: "curl/8"})
	r.Record(ctx, domain.ActivityEntry{Action: domain.ActivityUserLogin, Description: "login", UserID: "u1"})
	r.Record(ctx, domain.ActivityEntry{Action: domain.ActivityTeamCreated, Description: "team", UserAgent: "explicit"})
	r.Stop()

	for _, sink := range []*memorySink{a, b} {
		got := sink.All()
		require.Len(t, got, 2, "a failing sink must not stop delivery")
		require.NotEmpty(t, got[0].ID)
		require.Equal(t, fixed, got[0].CreatedAt)
		require.Equal(t, "203.0.113.7", got[0].IPAddress)
		require.Equal(t, "curl/8", got[0].UserAgent)
		require.Equal(t, "explicit", got[1].UserAgent)
	}
}

func TestAsyncRecorder_DropsWhenFull(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	r := NewAsyncRecorder(slogx.Discard(), 1, sink)
	r.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			r.Record(context.Background(), domain.ActivityEntry{Action: "x"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	close(sink.block)
	r.Stop()
	got := len(sink.All())
	require.GreaterOrEqual(t, got, 1)
	require.Less(t, got, 10)
}

func TestAsyncRecorder_RecordAfterStop(t *testing.T) {
	sink := &memorySink{}
	r := NewAsyncRecorder(slogx.Discard(), 4, sink)
	r.Start()
	r.Stop()
	r.Stop()

	r.Record(context.Background(), domain.ActivityEntry{Action: "late"})
	require.Empty(t, sink.All())
}

func TestMiddleware_CapturesRequestInfo(t *testing.T) {
	var info RequestInfo
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		info, _ = requestInfoFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	req.Header.Set("User-Agent", "chat-web/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "198.51.100.4", info.IPAddress)
	require.Equal(t, "chat-web/1.0", info.UserAgent)
}

func TestStoreSink(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	ctx := context.Background()
	sink := StoreSink{Repo: s.ActivityLogs()}
	err = sink.Write(ctx, domain.ActivityEntry{
		ID:          "act-1",
		Action:      domain.ActivityUserInvited,
		Description: "invited bob@example.com",
		TeamID:      "team-1",
		Metadata:    map[string]any{"email": "bob@example.com"},
		CreatedAt:   time.Date(2026, time.June, 2, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, err := s.ActivityLogs().ListTeamActivity(ctx, "team-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.ActivityUserInvited, got[0].Action)
	require.Equal(t, "bob@example.com", got[0].Metadata["email"])
}
