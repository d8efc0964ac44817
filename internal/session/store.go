// Package session owns the login, signup, logout and demo-session lifecycle
// and persists the session token across restarts.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/lensline/internal/api"
	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/Veraticus/lensline/internal/service"
	"golang.org/x/oauth2"
)

// DemoToken is the sentinel token of a demo session.
const DemoToken = "demo-token"

// Display messages used when the remote error carries none.
const (
	MsgLoginFailed  = "Login failed"
	MsgSignupFailed = "Signup failed"
	MsgUpdateFailed = "Update failed"
)

// Remote is the authentication half of the remote service.
type Remote interface {
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Signup(ctx context.Context, name, email, password string) (api.AuthResponse, error)
	Me(ctx context.Context) (model.User, error)
	UpdateProfile(ctx context.Context, patch model.ProfilePatch) (model.User, error)
}

// State is a snapshot of the session.
type State struct {
	ExpiresAt       time.Time
	User            *model.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

// IsDemo reports whether the session is the local demo session.
func (s State) IsDemo() bool {
	return s.Token == DemoToken
}

// Store holds the session. It is safe for concurrent use and doubles as the
// oauth2.TokenSource the API client uses to authenticate requests.
type Store struct {
	remote    Remote
	kv        service.KeyValueStore
	now       func() time.Time
	user      *model.User
	expiresAt time.Time
	token     string
	mu        sync.RWMutex
	authed    bool
	loading   bool
}

var _ oauth2.TokenSource = (*Store)(nil)

// NewStore creates a store in the loading state; call Initialize next.
func NewStore(remote Remote, kv service.KeyValueStore) *Store {
	return &Store{
		remote:  remote,
		kv:      kv,
		now:     time.Now,
		loading: true,
	}
}

// SetRemote attaches the remote service after construction, for callers
// whose client needs the store as its token source.
func (s *Store) SetRemote(remote Remote) {
	s.mu.Lock()
	s.remote = remote
	s.mu.Unlock()
}

// Initialize rehydrates the persisted token. Loading is always cleared
// before it returns. When a real token was found the profile is fetched in
// the background; the returned channel closes once that fetch finishes, or
// immediately when there is nothing to fetch.
func (s *Store) Initialize(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	token, err := loadToken(ctx, s.kv)
	if err != nil {
		common.LogWarn("Failed to read persisted session", common.Fields{"error": err})
	}

	switch {
	case token == "":
		s.setLoading(false)
		close(done)
		return done

	case token == DemoToken:
		s.mu.Lock()
		s.startDemoLocked()
		s.mu.Unlock()
		close(done)
		return done
	}

	expiresAt, hasExpiry := tokenExpiry(token)
	if hasExpiry && !expiresAt.After(s.now()) {
		common.LogInfo("Persisted session expired", common.Fields{"expired_at": expiresAt})
		s.Logout(ctx)
		s.setLoading(false)
		close(done)
		return done
	}

	s.mu.Lock()
	s.token = token
	s.expiresAt = expiresAt
	s.authed = true
	s.loading = false
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := s.FetchUser(ctx); err != nil {
			slog.Info("Session could not be verified, logged out", "error", err)
		}
	}()
	return done
}

// Login authenticates with the remote service. A failure is returned as a
// *common.UserError whose message is fit for display; the session is left
// unauthenticated and nothing is synthesized.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.remoteClient().Login(ctx, email, password)
	if err != nil {
		return common.NewUserError(api.MessageOf(err, MsgLoginFailed), err)
	}
	s.establish(ctx, resp)
	return nil
}

// Signup registers and authenticates in one step, like Login.
func (s *Store) Signup(ctx context.Context, name, email, password string) error {
	resp, err := s.remoteClient().Signup(ctx, name, email, password)
	if err != nil {
		return common.NewUserError(api.MessageOf(err, MsgSignupFailed), err)
	}
	s.establish(ctx, resp)
	return nil
}

func (s *Store) establish(ctx context.Context, resp api.AuthResponse) {
	expiresAt, _ := tokenExpiry(resp.Token)
	user := resp.User

	s.mu.Lock()
	if err := saveToken(ctx, s.kv, resp.Token); err != nil {
		common.LogWarn("Failed to persist session", common.Fields{"error": err})
	}
	s.user = &user
	s.token = resp.Token
	s.expiresAt = expiresAt
	s.authed = true
	s.loading = false
	s.mu.Unlock()

	slog.Debug("Session established", "user_id", user.ID)
}

// Logout clears the session and the persisted token. It always succeeds;
// no remote call is made.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.logoutLocked(ctx)
	s.mu.Unlock()
}

// logoutLocked erases the persisted entries under the same lock as the
// in-memory state so a concurrent login cannot be half undone.
func (s *Store) logoutLocked(ctx context.Context) {
	if err := clearToken(ctx, s.kv); err != nil {
		common.LogWarn("Failed to erase persisted session", common.Fields{"error": err})
	}
	s.user = nil
	s.token = ""
	s.expiresAt = time.Time{}
	s.authed = false
}

// FetchUser refreshes the profile for the current token. Any failure logs
// the session out and is returned for the caller's information. When the
// session changes while the request is in flight the result is dropped.
func (s *Store) FetchUser(ctx context.Context) error {
	s.mu.Lock()
	if s.token == DemoToken {
		s.startDemoLocked()
		s.mu.Unlock()
		return nil
	}
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return common.ErrNotAuthenticated
	}

	user, err := s.remoteClient().Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token {
		common.LogDebug("Session changed during profile fetch, result dropped", nil)
		return nil
	}
	if err != nil {
		s.logoutLocked(ctx)
		return fmt.Errorf("fetch user: %w", err)
	}
	s.user = &user
	return nil
}

// UpdateProfile applies patch remotely and stores the canonical profile the
// server returns. On failure the previous profile is kept untouched.
func (s *Store) UpdateProfile(ctx context.Context, patch model.ProfilePatch) error {
	user, err := s.remoteClient().UpdateProfile(ctx, patch)
	if err != nil {
		return common.NewUserError(api.MessageOf(err, MsgUpdateFailed), err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// DemoLogin starts the local demo session without touching the network.
func (s *Store) DemoLogin(ctx context.Context) {
	s.mu.Lock()
	if err := saveToken(ctx, s.kv, DemoToken); err != nil {
		common.LogWarn("Failed to persist demo session", common.Fields{"error": err})
	}
	s.startDemoLocked()
	s.mu.Unlock()
}

func (s *Store) startDemoLocked() {
	user := DemoUser(s.now())
	s.user = &user
	s.token = DemoToken
	s.expiresAt = time.Time{}
	s.authed = true
	s.loading = false
}

// DemoUser is the fixed profile of the demo session.
func DemoUser(now time.Time) model.User {
	return model.User{
		ID:         "demo-123",
		Name:       "Demo User",
		Email:      "demo@lensline.ai",
		Plan:       model.PlanPro,
		ScansToday: 12,
		TotalScans: 156,
		JoinedAt:   now.UTC(),
	}
}

// State returns a snapshot of the session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Token:           s.token,
		ExpiresAt:       s.expiresAt,
		IsAuthenticated: s.authed,
		IsLoading:       s.loading,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Token implements oauth2.TokenSource.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return nil, common.ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken: s.token,
		TokenType:   "Bearer",
		Expiry:      s.expiresAt,
	}, nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) remoteClient() Remote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.remote == nil {
		return offlineRemote{}
	}
	return s.remote
}

// offlineRemote fails every call; it stands in until SetRemote is called.
type offlineRemote struct{}

func (offlineRemote) Login(context.Context, string, string) (api.AuthResponse, error) {
	return api.AuthResponse{}, common.ErrOffline
}

func (offlineRemote) Signup(context.Context, string, string, string) (api.AuthResponse, error) {
	return api.AuthResponse{}, common.ErrOffline
}

func (offlineRemote) Me(context.Context) (model.User, error) {
	return model.User{}, common.ErrOffline
}

func (offlineRemote) UpdateProfile(context.Context, model.ProfilePatch) (model.User, error) {
	return model.User{}, common.ErrOffline
}
