package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/lensline/internal/service"
)

// Persisted entry keys. Both are written and cleared together.
const (
	AuthKey  = "lensline-auth"
	TokenKey = "lensline-token"
)

// persistedAuth is the only session state that survives a restart.
type persistedAuth struct {
	Token           string `json:"token"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// loadToken returns the persisted token, preferring the raw entry and
// falling back to the JSON entry. An empty string means none.
func loadToken(ctx context.Context, kv service.KeyValueStore) (string, error) {
	raw, found, err := kv.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", TokenKey, err)
	}
	if found && raw != "" {
		return raw, nil
	}

	blob, found, err := kv.Get(ctx, AuthKey)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", AuthKey, err)
	}
	if !found {
		return "", nil
	}

	var auth persistedAuth
	if err := json.Unmarshal([]byte(blob), &auth); err != nil {
		slog.Warn("Ignoring unreadable persisted session", "key", AuthKey, "error", err)
		return "", nil
	}
	if !auth.IsAuthenticated {
		return "", nil
	}
	return auth.Token, nil
}

func saveToken(ctx context.Context, kv service.KeyValueStore, token string) error {
	blob, err := json.Marshal(persistedAuth{Token: token, IsAuthenticated: true})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := kv.Set(ctx, AuthKey, string(blob)); err != nil {
		return err
	}
	return kv.Set(ctx, TokenKey, token)
}

func clearToken(ctx context.Context, kv service.KeyValueStore) error {
	return kv.Delete(ctx, AuthKey, TokenKey)
}
