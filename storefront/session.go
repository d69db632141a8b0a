package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/judyrop/storefront/models"
)

// Session owns the persisted access token and the cached who-am-i result.
// Login, Register and Logout fire the auth-changed signal; the session
// subscribes its own Refresh to it.
type Session struct {
	store  *LocalStore
	client *Client

	mu        sync.RWMutex
	user      *UserInfo
	listeners []func(context.Context) error
}

// NewSession builds a session and a Client that sends its token.
func NewSession(store *LocalStore, baseURL string, opts ...Option) *Session {
	s := &Session{store: store}
	opts = append(opts, WithToken(s.Token))
	s.client = NewClient(baseURL, opts...)
	s.OnAuthChanged(s.Refresh)
	return s
}

func (s *Session) Client() *Client { return s.client }

// Token returns the stored access token, or "" when logged out.
func (s *Session) Token() string {
	var token string
	if ok, err := s.store.Get(TokenKey, &token); err != nil || !ok {
		return ""
	}
	return token
}

// User is the last who-am-i result, nil when unknown or logged out.
func (s *Session) User() *UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// CanSeeAdmin only drives what the client shows. The server checks the role
// on every admin request.
func (s *Session) CanSeeAdmin() bool {
	u := s.User()
	return u != nil && u.Role == models.RoleAdmin
}

// OnAuthChanged subscribes fn to the auth-changed signal. Listener errors
// are returned by the Login, Register or Logout call that fired it.
func (s *Session) OnAuthChanged(fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Session) authChanged(ctx context.Context) error {
	s.mu.RLock()
	listeners := append([]func(context.Context) error{}, s.listeners...)
	s.mu.RUnlock()
	var errs []error
	for _, fn := range listeners {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) setUser(u *UserInfo) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// Refresh fetches who-am-i when a token is stored. A failed fetch clears
// both the token and the user.
func (s *Session) Refresh(ctx context.Context) error {
	if s.Token() == "" {
		s.setUser(nil)
		return nil
	}
	me, err := s.client.Me(ctx)
	if err != nil {
		s.setUser(nil)
		if rmErr := s.store.Remove(TokenKey); rmErr != nil {
			return rmErr
		}
		return err
	}
	s.setUser(me)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	session, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.adopt(ctx, session.AccessToken)
}

// LoginWithIDToken trades an OpenID Connect ID token for a session.
func (s *Session) LoginWithIDToken(ctx context.Context, idToken string) error {
	session, err := s.client.LoginWithIDToken(ctx, idToken)
	if err != nil {
		return err
	}
	return s.adopt(ctx, session.AccessToken)
}

// Register creates the account and logs straight into it.
func (s *Session) Register(ctx context.Context, email, password string) error {
	if _, err := s.client.Register(ctx, email, password); err != nil {
		return err
	}
	return s.Login(ctx, email, password)
}

func (s *Session) Logout(ctx context.Context) error {
	if err := s.store.Remove(TokenKey); err != nil {
		return err
	}
	s.setUser(nil)
	return s.authChanged(ctx)
}

func (s *Session) adopt(ctx context.Context, token string) error {
	if err := s.store.Set(TokenKey, token); err != nil {
		return err
	}
	return s.authChanged(ctx)
}
