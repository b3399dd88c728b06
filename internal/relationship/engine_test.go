package relationship

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hiverapp/hiver/internal/models"
)

// fakeStore is an in-memory Store with the same uniqueness guarantees as the
// production adapter.
type fakeStore struct {
	follows     map[string]*models.Follow     // keyed by user:artist
	connections map[string]*models.Connection // keyed by id
	failAll     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		follows:     make(map[string]*models.Follow),
		connections: make(map[string]*models.Connection),
	}
}

func (s *fakeStore) check() error {
	if s.failAll {
		return ErrStoreUnavailable
	}
	return nil
}

func (s *fakeStore) FindFollow(ctx context.Context, userID, artistID string) (*models.Follow, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.follows[userID+":"+artistID], nil
}

func (s *fakeStore) InsertFollow(ctx context.Context, follow *models.Follow) error {
	if err := s.check(); err != nil {
		return err
	}
	key := follow.UserID + ":" + follow.ArtistID
	if _, ok := s.follows[key]; ok {
		return ErrConflict
	}
	s.follows[key] = follow
	return nil
}

func (s *fakeStore) DeleteFollow(ctx context.Context, userID, artistID string) error {
	if err := s.check(); err != nil {
		return err
	}
	delete(s.follows, userID+":"+artistID)
	return nil
}

func (s *fakeStore) CountFollowers(ctx context.Context, artistID string) (int64, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	var n int64
	for _, f := range s.follows {
		if f.ArtistID == artistID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) FindConnectionBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	pair := models.PairKey(a, b)
	for _, c := range s.connections {
		if c.PairKey == pair {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetConnection(ctx context.Context, id string) (*models.Connection, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	c, ok := s.connections[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) InsertConnection(ctx context.Context, conn *models.Connection) error {
	if err := s.check(); err != nil {
		return err
	}
	for _, c := range s.connections {
		if c.PairKey == conn.PairKey {
			return ErrConflict
		}
	}
	s.connections[conn.ID] = conn
	return nil
}

func (s *fakeStore) UpdateConnectionStatus(ctx context.Context, id string, status models.ConnectionStatus) error {
	if err := s.check(); err != nil {
		return err
	}
	c, ok := s.connections[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *fakeStore) DeleteConnection(ctx context.Context, id string) error {
	if err := s.check(); err != nil {
		return err
	}
	delete(s.connections, id)
	return nil
}

func (s *fakeStore) ListConnectionsFor(ctx context.Context, profileID string) ([]*models.Connection, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var out []*models.Connection
	for _, c := range s.connections {
		if c.Involves(profileID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestFollow_SelfReference(t *testing.T) {
	engine := NewEngine(newFakeStore())
	if err := engine.Follow(context.Background(), "alice", "alice"); !errors.Is(err, ErrSelfReference) {
		t.Errorf("Follow(A, A) = %v, want ErrSelfReference", err)
	}
}

func TestFollow_Unauthenticated(t *testing.T) {
	engine := NewEngine(newFakeStore())
	if err := engine.Follow(context.Background(), "", "artist"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Follow with empty viewer = %v, want ErrUnauthenticated", err)
	}
}

func TestFollow_Directionality(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	if err := engine.Follow(ctx, "alice", "bob"); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	following, err := engine.FollowStatus(ctx, "alice", "bob")
	if err != nil || !following {
		t.Errorf("FollowStatus(alice, bob) = %v, %v, want true", following, err)
	}

	reverse, err := engine.FollowStatus(ctx, "bob", "alice")
	if err != nil || reverse {
		t.Errorf("FollowStatus(bob, alice) = %v, %v, want false", reverse, err)
	}
}

func TestFollowStatus_AbsentViewer(t *testing.T) {
	engine := NewEngine(newFakeStore())
	following, err := engine.FollowStatus(context.Background(), "", "bob")
	if err != nil {
		t.Fatalf("FollowStatus with empty viewer errored: %v", err)
	}
	if following {
		t.Error("absent viewer should not follow anyone")
	}
}

func TestFollow_DuplicateIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store)

	if err := engine.Follow(ctx, "alice", "bob"); err != nil {
		t.Fatalf("first Follow failed: %v", err)
	}
	if err := engine.Follow(ctx, "alice", "bob"); err != nil {
		t.Errorf("duplicate Follow should succeed as no-op, got: %v", err)
	}
	if len(store.follows) != 1 {
		t.Errorf("expected exactly 1 follow edge, got %d", len(store.follows))
	}
}

func TestUnfollow_MissingEdgeIsNoop(t *testing.T) {
	engine := NewEngine(newFakeStore())
	if err := engine.Unfollow(context.Background(), "alice", "bob"); err != nil {
		t.Errorf("Unfollow of missing edge should succeed, got: %v", err)
	}
}

func TestFollowerCount(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	for _, fan := range []string{"fan1", "fan2", "fan3"} {
		if err := engine.Follow(ctx, fan, "artist-x"); err != nil {
			t.Fatalf("Follow(%s) failed: %v", fan, err)
		}
	}
	if err := engine.Unfollow(ctx, "fan2", "artist-x"); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}

	count, err := engine.FollowerCount(ctx, "artist-x")
	if err != nil {
		t.Fatalf("FollowerCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("FollowerCount = %d, want 2", count)
	}
}

func TestRequestConnection_SelfReference(t *testing.T) {
	engine := NewEngine(newFakeStore())
	if _, err := engine.RequestConnection(context.Background(), "alice", "alice"); !errors.Is(err, ErrSelfReference) {
		t.Errorf("RequestConnection(A, A) = %v, want ErrSelfReference", err)
	}
}

func TestRequestConnection_DuplicateConflict(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	if _, err := engine.RequestConnection(ctx, "alice", "bob"); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	if _, err := engine.RequestConnection(ctx, "alice", "bob"); !errors.Is(err, ErrConflict) {
		t.Errorf("same-direction duplicate = %v, want ErrConflict", err)
	}
	if _, err := engine.RequestConnection(ctx, "bob", "alice"); !errors.Is(err, ErrConflict) {
		t.Errorf("reverse-direction duplicate = %v, want ErrConflict", err)
	}
}

func TestRequestConnection_RacingInsert(t *testing.T) {
	// Simulates two clients passing the existence check before either
	// inserts: the store's pair uniqueness must reject the second insert.
	ctx := context.Background()
	store := newFakeStore()
	engine := NewEngine(store)

	first := models.NewConnection("alice", "bob")
	if err := store.InsertConnection(ctx, first); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	second := models.NewConnection("bob", "alice")
	if err := store.InsertConnection(ctx, second); !errors.Is(err, ErrConflict) {
		t.Errorf("racing insert = %v, want ErrConflict", err)
	}

	if _, err := engine.RequestConnection(ctx, "bob", "alice"); !errors.Is(err, ErrConflict) {
		t.Errorf("RequestConnection after race = %v, want ErrConflict", err)
	}
}

func TestConnectionLifecycle(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	conn, err := engine.RequestConnection(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}

	assertStatus := func(viewer, subject string, want Status) {
		t.Helper()
		got, err := engine.ConnectionStatus(ctx, viewer, subject)
		if err != nil {
			t.Fatalf("ConnectionStatus(%s, %s) failed: %v", viewer, subject, err)
		}
		if got != want {
			t.Errorf("ConnectionStatus(%s, %s) = %s, want %s", viewer, subject, got, want)
		}
	}

	assertStatus("alice", "bob", StatusPendingSent)
	assertStatus("bob", "alice", StatusPendingReceived)

	if err := engine.AcceptConnection(ctx, conn.ID, "bob"); err != nil {
		t.Fatalf("AcceptConnection failed: %v", err)
	}
	assertStatus("alice", "bob", StatusConnected)
	assertStatus("bob", "alice", StatusConnected)

	if err := engine.RemoveConnection(ctx, conn.ID, "alice"); err != nil {
		t.Fatalf("RemoveConnection failed: %v", err)
	}
	assertStatus("alice", "bob", StatusNone)
	assertStatus("bob", "alice", StatusNone)
}

func TestAcceptConnection_InitiatorForbidden(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	conn, err := engine.RequestConnection(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}

	if err := engine.AcceptConnection(ctx, conn.ID, "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("initiator accept = %v, want ErrForbidden", err)
	}
	if err := engine.AcceptConnection(ctx, conn.ID, "mallory"); !errors.Is(err, ErrForbidden) {
		t.Errorf("third-party accept = %v, want ErrForbidden", err)
	}
}

func TestTerminate_WrongStatusOrParty(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	conn, err := engine.RequestConnection(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}

	// remove requires accepted status
	if err := engine.RemoveConnection(ctx, conn.ID, "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("remove of pending edge = %v, want ErrForbidden", err)
	}
	// cancel is initiator-only
	if err := engine.CancelConnection(ctx, conn.ID, "bob"); !errors.Is(err, ErrForbidden) {
		t.Errorf("recipient cancel = %v, want ErrForbidden", err)
	}
	// reject is recipient-only
	if err := engine.RejectConnection(ctx, conn.ID, "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("initiator reject = %v, want ErrForbidden", err)
	}

	if err := engine.AcceptConnection(ctx, conn.ID, "bob"); err != nil {
		t.Fatalf("AcceptConnection failed: %v", err)
	}
	// reject/cancel require pending status
	if err := engine.RejectConnection(ctx, conn.ID, "bob"); !errors.Is(err, ErrForbidden) {
		t.Errorf("reject of accepted edge = %v, want ErrForbidden", err)
	}
}

func TestRejectThenReRequest(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	conn, err := engine.RequestConnection(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}
	if err := engine.RejectConnection(ctx, conn.ID, "bob"); err != nil {
		t.Fatalf("RejectConnection failed: %v", err)
	}

	status, err := engine.ConnectionStatus(ctx, "alice", "bob")
	if err != nil || status != StatusNone {
		t.Errorf("status after reject = %s, %v, want none", status, err)
	}

	// rejection deletes the edge, so a new request goes through immediately
	if _, err := engine.RequestConnection(ctx, "alice", "bob"); err != nil {
		t.Errorf("re-request after reject failed: %v", err)
	}
}

func TestAcceptConnection_NotFound(t *testing.T) {
	engine := NewEngine(newFakeStore())
	if err := engine.AcceptConnection(context.Background(), "missing-id", "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("accept of missing edge = %v, want ErrNotFound", err)
	}
}

func TestConnections_Partitioning(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(newFakeStore())

	accepted, err := engine.RequestConnection(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}
	if err := engine.AcceptConnection(ctx, accepted.ID, "bob"); err != nil {
		t.Fatalf("AcceptConnection failed: %v", err)
	}
	if _, err := engine.RequestConnection(ctx, "alice", "carol"); err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}
	if _, err := engine.RequestConnection(ctx, "dave", "alice"); err != nil {
		t.Fatalf("RequestConnection failed: %v", err)
	}

	list, err := engine.Connections(ctx, "alice")
	if err != nil {
		t.Fatalf("Connections failed: %v", err)
	}

	if len(list.Connected) != 1 {
		t.Errorf("Connected = %d edges, want 1", len(list.Connected))
	}
	if len(list.Sent) != 1 || list.Sent[0].FriendID != "carol" {
		t.Errorf("Sent = %+v, want single edge to carol", list.Sent)
	}
	if len(list.Requests) != 1 || list.Requests[0].UserID != "dave" {
		t.Errorf("Requests = %+v, want single edge from dave", list.Requests)
	}
}

func TestEngine_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failAll = true
	engine := NewEngine(store)

	if err := engine.Follow(ctx, "alice", "bob"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Follow during outage = %v, want ErrStoreUnavailable", err)
	}
	if _, err := engine.RequestConnection(ctx, "alice", "bob"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("RequestConnection during outage = %v, want ErrStoreUnavailable", err)
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusNone, "none"},
		{StatusPendingSent, "pending_sent"},
		{StatusPendingReceived, "pending_received"},
		{StatusConnected, "connected"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.expected)
		}
	}
}
