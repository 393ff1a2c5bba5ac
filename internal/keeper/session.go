package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/waxworks/vinylvault/internal/cryptox"
	"github.com/waxworks/vinylvault/internal/events"
)

// GetSession loads the persisted session. Returns common.ErrNotFound when no
// session exists.
func (k *Keeper) GetSession(ctx context.Context) (*Session, error) {
	raw, err := k.store.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// SetSession persists the given session verbatim, replacing any prior one.
func (k *Keeper) SetSession(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := k.store.Set(ctx, sessionKey, data); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	k.hub.Publish(events.Event{Kind: events.KindSessionChanged, At: k.now()})
	return nil
}

// UpdateSession refreshes LastActivity and sets the active flag, creating a
// fresh session if none exists.
func (k *Keeper) UpdateSession(ctx context.Context, active bool) error {
	s, err := k.GetSession(ctx)
	if err != nil {
		return k.newSession(ctx, active)
	}
	s.IsActive = active
	s.LastActivity = k.now()
	return k.SetSession(ctx, s)
}

// ClearSession removes the persisted session unconditionally.
func (k *Keeper) ClearSession(ctx context.Context) error {
	if err := k.store.Remove(ctx, sessionKey); err != nil {
		return err
	}
	k.hub.Publish(events.Event{Kind: events.KindSessionChanged, At: k.now()})
	return nil
}

// IsSessionValid reports whether a session exists, is active, and saw
// activity within the session TTL.
func (k *Keeper) IsSessionValid(ctx context.Context) bool {
	s, err := k.GetSession(ctx)
	if err != nil {
		return false
	}
	if !s.IsActive {
		return false
	}
	return k.now().Sub(s.LastActivity) < k.sessionTTL
}

// newSession creates and persists a session with a fresh random id.
func (k *Keeper) newSession(ctx context.Context, active bool) error {
	id, err := cryptox.RandomToken(32)
	if err != nil {
		return err
	}
	now := k.now()
	return k.SetSession(ctx, &Session{
		SessionID:    id,
		CreatedAt:    now,
		LastActivity: now,
		IsActive:     active,
	})
}

// touchSession marks the session active with fresh activity, creating one if
// needed, and returns the session id. Every successful store/retrieve passes
// through here.
func (k *Keeper) touchSession(ctx context.Context) (string, error) {
	s, err := k.GetSession(ctx)
	if err != nil {
		if err := k.newSession(ctx, true); err != nil {
			return "", err
		}
		s, err = k.GetSession(ctx)
		if err != nil {
			return "", err
		}
		return s.SessionID, nil
	}

	s.IsActive = true
	s.LastActivity = k.now()
	if err := k.SetSession(ctx, s); err != nil {
		return "", err
	}
	return s.SessionID, nil
}
