package supabase

import (
	"encoding/json"
	"fmt"

	"clementus360/focusflow/store"

	"github.com/supabase-community/supabase-go"
)

const (
	tasksTable    = "tasks"
	sessionsTable = "focus_sessions"
)

// Store persists tasks and focus sessions through Supabase PostgREST.
// It authenticates with the service key, so ownership is enforced by the
// services layer rather than row level security.
type Store struct {
	client *supabase.Client
}

var _ store.Store = (*Store)(nil)

func New(apiURL, apiKey string) (*Store, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
	}

	client, err := supabase.NewClient(apiURL, apiKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error { return nil }

// decodeOne unmarshals a PostgREST array response holding at most one row.
func decodeOne[T any](resp []byte) (T, error) {
	var rows []T
	var zero T
	if err := json.Unmarshal(resp, &rows); err != nil {
		return zero, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(rows) == 0 {
		return zero, store.ErrNotFound
	}
	return rows[0], nil
}
