// Package flow holds the server-side state of observations in progress. The
// state lives in Redis under an opaque flow ID so it survives across requests
// without ambient per-connection session storage.
package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a flow ID has no stored state (never started,
// already completed, or expired past its TTL).
var ErrNotFound = errors.New("observation flow not found")

// State is the transient payload of one observation-taking flow.
type State struct {
	FlowID        string            `json:"flow_id"`
	SessionID     uint              `json:"session_id"`
	ParticipantID uint              `json:"participant_id"`
	UserID        uint              `json:"user_id"`
	Answers       map[string]string `json:"answers"`
	CurrentIndex  int               `json:"current_index"`
	IsRedo        bool              `json:"is_redo"`
	// PreviousVersion is the version the flow was initialized from; 0 when the
	// pair had no history.
	PreviousVersion int       `json:"previous_version"`
	StartedAt       time.Time `json:"started_at"`
}

// Store persists flow state in Redis with a TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(flowID string) string {
	return fmt.Sprintf("obsflow:%s", flowID)
}

// Start creates a new flow with a fresh opaque ID and stores it.
func (s *Store) Start(ctx context.Context, state *State) (*State, error) {
	state.FlowID = uuid.NewString()
	state.StartedAt = time.Now()
	if state.Answers == nil {
		state.Answers = make(map[string]string)
	}
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Get loads the state for a flow ID, refreshing nothing.
func (s *Store) Get(ctx context.Context, flowID string) (*State, error) {
	data, err := s.client.Get(ctx, s.key(flowID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load flow state: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to decode flow state: %w", err)
	}
	return &state, nil
}

// Update stores the modified state and resets its TTL: a flow stays alive as
// long as answers keep coming in.
func (s *Store) Update(ctx context.Context, state *State) error {
	return s.save(ctx, state)
}

// Delete removes the flow state; completing and abandoning both end here.
func (s *Store) Delete(ctx context.Context, flowID string) error {
	return s.client.Del(ctx, s.key(flowID)).Err()
}

func (s *Store) save(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode flow state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.FlowID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store flow state: %w", err)
	}
	return nil
}
