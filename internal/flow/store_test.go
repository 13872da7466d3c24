package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, ttl), mr
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	state, err := store.Start(ctx, &State{
		SessionID:       3,
		ParticipantID:   7,
		UserID:          1,
		PreviousVersion: 2,
		IsRedo:          true,
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if state.FlowID == "" {
		t.Fatal("expected a flow ID to be assigned")
	}
	if state.Answers == nil {
		t.Fatal("expected answers map to be initialized")
	}

	loaded, err := store.Get(ctx, state.FlowID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.SessionID != 3 || loaded.ParticipantID != 7 || loaded.PreviousVersion != 2 {
		t.Errorf("loaded state mismatch: %+v", loaded)
	}

	loaded.Answers["entry_on_time"] = "yes"
	loaded.CurrentIndex = 1
	if err := store.Update(ctx, loaded); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	again, err := store.Get(ctx, state.FlowID)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if again.Answers["entry_on_time"] != "yes" || again.CurrentIndex != 1 {
		t.Errorf("update not persisted: %+v", again)
	}
}

func TestStoreGetUnknownFlow(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "no-such-flow")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	state, err := store.Start(ctx, &State{SessionID: 1, ParticipantID: 1, UserID: 1})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := store.Delete(ctx, state.FlowID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, state.FlowID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	state, err := store.Start(ctx, &State{SessionID: 1, ParticipantID: 2, UserID: 1})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, state.FlowID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}
