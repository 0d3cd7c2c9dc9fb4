package store

import (
	"context"

	"github.com/lectio/lectio-server/internal/engine"
)

const playerStatePrefix = "player:state:"

func playerStateKey(userID string) []byte {
	return []byte(playerStatePrefix + userID)
}

// GetPlayerState retrieves the persisted player state for a user.
// Returns (nil, nil) when the user has no saved state yet.
func (s *Store) GetPlayerState(ctx context.Context, userID string) (*engine.PersistedState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var state engine.PersistedState
	err := s.get(playerStateKey(userID), &state)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// SavePlayerState writes the player state for a user, replacing any previous
// state.
func (s *Store) SavePlayerState(ctx context.Context, userID string, state *engine.PersistedState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(playerStateKey(userID), state)
}

// DeletePlayerState removes a user's saved player state.
func (s *Store) DeletePlayerState(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete(playerStateKey(userID))
}

// ForUser returns an engine.Storage bound to one user's state slot.
func (s *Store) ForUser(userID string) engine.Storage {
	return userStateStore{store: s, userID: userID}
}

type userStateStore struct {
	store  *Store
	userID string
}

func (u userStateStore) SaveState(ctx context.Context, state *engine.PersistedState) error {
	return u.store.SavePlayerState(ctx, u.userID, state)
}

func (u userStateStore) LoadState(ctx context.Context) (*engine.PersistedState, error) {
	return u.store.GetPlayerState(ctx, u.userID)
}
