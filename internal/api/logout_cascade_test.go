package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"fitcoach-client/internal/apierr"
	"fitcoach-client/internal/domain"
	"fitcoach-client/internal/keystore"
	"fitcoach-client/internal/session"
)

// TestUnauthorizedCascadesToLogoutOnce wires the executor to a real
// session manager the way main does and hammers it with concurrent
// requests that all draw a 401. Every caller gets Unauthorized, the
// session ends up cleared, and subscribers observe exactly one
// logged-out transition.
func TestUnauthorizedCascadesToLogoutOnce(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"token revoked"}`))
	}))
	defer srv.Close()

	store, err := keystore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	mgr := session.NewManager(store, zap.NewNop().Sugar())
	if err := mgr.Establish(ctx, "tok", domain.UserRecord{ID: "u1", Name: "n", Email: "e"}); err != nil {
		t.Fatalf("Establish: %v", err)
	}

	var loggedOut int32
	mgr.Subscribe(func(s session.State) {
		if s == session.StateCleared {
			atomic.AddInt32(&loggedOut, 1)
		}
	})

	client, err := NewClient(srv.URL, http.DefaultClient, mgr,
		func() { mgr.Clear(ctx) }, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	const concurrency = 16
	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(ctx, "trainer/clients", nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if !apierr.IsKind(err, apierr.KindUnauthorized) {
			t.Errorf("request %d: err = %v, want Unauthorized", i, err)
		}
	}
	if mgr.Token() != "" || mgr.User() != nil {
		t.Error("session survived 401")
	}
	if got := atomic.LoadInt32(&loggedOut); got != 1 {
		t.Errorf("logged-out notifications = %d, want 1", got)
	}
}
