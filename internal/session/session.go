// Package session owns the client's belief about who is signed in.
//
// Manager is the single writer of the (user, token, hydrating) triple. Every change
// goes through a named transition (Hydrate, Login, Signup, Logout, RefreshProfile,
// UpdateProfile); consumers only ever see immutable snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ministagram/internal/logger"
	"ministagram/internal/model"
	"ministagram/internal/tokenstore"
)

var (
	// ErrHydrating is returned by RequireAuth while the token is still being validated.
	ErrHydrating = errors.New("session is still being validated")
	// ErrNotAuthenticated is returned by RequireAuth when nobody is signed in.
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrSuperseded is returned by Login when a later transition replaced its result.
	ErrSuperseded = errors.New("sign in superseded by a later session change")
)

// AuthService is the slice of the API the session needs.
type AuthService interface {
	Login(ctx context.Context, payload model.LoginPayload) (*model.AuthResponse, error)
	Signup(ctx context.Context, payload model.SignupPayload) (*model.SignUpResponse, error)
	CurrentUser(ctx context.Context) (*model.User, error)
}

// UserUpdater updates a profile.
type UserUpdater interface {
	Update(ctx context.Context, id int64, payload model.UpdateUserPayload) (*model.User, error)
}

// State is a snapshot of the session. User is non-nil only when Token is non-empty.
type State struct {
	User        *model.User
	Token       string
	IsHydrating bool
}

// Authenticated reports whether a validated user is present.
func (s State) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Manager holds the session state.
type Manager struct {
	auth   AuthService
	users  UserUpdater
	tokens tokenstore.Store
	log    *zap.Logger

	mu          sync.Mutex
	state       State
	inFlight    int // hydrations and logins currently running
	seq         uint64
	subscribers []chan State
}

// NewManager builds a manager. It starts out hydrating; call Hydrate once at
// startup.
func NewManager(auth AuthService, users UserUpdater, tokens tokenstore.Store, log *zap.Logger) *Manager {
	return &Manager{
		auth:   auth,
		users:  users,
		tokens: tokens,
		log:    logger.OrNop(log).Named("Session"),
		state:  State{IsHydrating: true},
	}
}

// Snapshot returns a copy of the current state. The User pointer refers to a copy
// the caller may keep.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *model.User {
	return m.Snapshot().User
}

// RequireAuth is the route guard: it fails while hydrating or when signed out.
func (m *Manager) RequireAuth() (*model.User, error) {
	s := m.Snapshot()
	switch {
	case s.IsHydrating:
		return nil, ErrHydrating
	case !s.Authenticated():
		return nil, ErrNotAuthenticated
	}
	return s.User, nil
}

// Subscribe returns a channel receiving a snapshot after every transition. Slow
// subscribers miss intermediate states rather than block the writer. The channel
// is closed once ctx is done.
func (m *Manager) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, 4)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subscribers {
			if sub == ch {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}

// Hydrate validates the stored token. With no token the session becomes signed out.
// With a token it resolves the current user; any failure clears the token. Safe to
// call again to force re-validation. A Hydrate overtaken by a later Login, Logout or
// Hydrate leaves the session to that transition.
func (m *Manager) Hydrate(ctx context.Context) error {
	seq := m.begin()
	defer m.end()

	token, err := m.tokens.Read(ctx)
	if err != nil {
		m.log.Warn("reading stored token failed", zap.Error(err))
		token = ""
	}
	if token == "" {
		m.commit(seq, func(s *State) { s.User, s.Token = nil, "" })
		return nil
	}

	user, err := m.auth.CurrentUser(ctx)
	if !m.current(seq) {
		m.log.Debug("hydrate superseded", zap.Uint64("seq", seq))
		return nil
	}
	if err != nil {
		m.log.Info("stored token rejected, signing out", zap.Error(err))
		m.clearToken(ctx)
		m.commit(seq, func(s *State) { s.User, s.Token = nil, "" })
		return fmt.Errorf("hydrate session: %w", err)
	}

	// The token may have been cleared by a 401 from an unrelated call while
	// /auth/me was in flight.
	current, err := m.tokens.Read(ctx)
	if err != nil || current != token {
		m.commit(seq, func(s *State) { s.User, s.Token = nil, "" })
		return errors.New("hydrate session: token changed during validation")
	}

	if m.commit(seq, func(s *State) { s.User, s.Token = user, token }) {
		m.log.Debug("session hydrated", zap.String("username", user.Username))
	}
	return nil
}

// RefreshProfile re-reads the current user from the server.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	return m.Hydrate(ctx)
}

// Login exchanges credentials for a token, persists it and loads the profile. On
// any failure the store and state are cleared and the API error is returned as-is
// so callers can tell "account not found" from bad credentials.
func (m *Manager) Login(ctx context.Context, creds model.LoginPayload) error {
	seq := m.begin()
	defer m.end()

	resp, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.failLogin(ctx, seq, err)
		return err
	}
	if resp.Token == "" {
		err := errors.New("login: server returned an empty token")
		m.failLogin(ctx, seq, err)
		return err
	}
	if err := m.tokens.Persist(ctx, resp.Token); err != nil {
		m.failLogin(ctx, seq, err)
		return fmt.Errorf("login: persist token: %w", err)
	}

	user, err := m.auth.CurrentUser(ctx)
	if err != nil {
		m.failLogin(ctx, seq, err)
		return err
	}

	if !m.commit(seq, func(s *State) { s.User, s.Token = user, resp.Token }) {
		return ErrSuperseded
	}
	m.log.Info("signed in", zap.String("username", user.Username))
	return nil
}

// Signup creates the account and then always signs in with the same credentials.
func (m *Manager) Signup(ctx context.Context, details model.SignupPayload) error {
	if _, err := m.auth.Signup(ctx, details); err != nil {
		return err
	}
	return m.Login(ctx, details.Credentials())
}

// Logout clears the store and the state. It never fails: a store error is logged
// and the in-memory session is reset regardless.
func (m *Manager) Logout(ctx context.Context) {
	m.clearToken(ctx)
	m.set(func(s *State) { *s = State{IsHydrating: s.IsHydrating && m.inFlight > 0} })
	m.log.Info("signed out")
}

// UpdateProfile saves profile changes for the signed-in user and refreshes the
// session from the server.
func (m *Manager) UpdateProfile(ctx context.Context, payload model.UpdateUserPayload) (*model.User, error) {
	user, err := m.RequireAuth()
	if err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	updated, err := m.users.Update(ctx, user.ID, payload)
	if err != nil {
		return nil, err
	}
	if err := m.RefreshProfile(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// failLogin clears the store and state unless a later transition owns them.
func (m *Manager) failLogin(ctx context.Context, seq uint64, err error) {
	m.log.Info("sign in failed", zap.Error(err))
	if !m.current(seq) {
		return
	}
	m.clearToken(ctx)
	m.commit(seq, func(s *State) { s.User, s.Token = nil, "" })
}

func (m *Manager) clearToken(ctx context.Context) {
	if err := m.tokens.Clear(ctx); err != nil {
		m.log.Error("clearing stored token failed", zap.Error(err))
	}
}

// begin starts a transition and returns its sequence number.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	m.inFlight++
	m.seq++
	seq := m.seq
	m.state.IsHydrating = true
	s := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(s)
	return seq
}

func (m *Manager) end() {
	m.mu.Lock()
	m.inFlight--
	m.state.IsHydrating = m.inFlight > 0
	s := m.snapshotLocked()
	m.mu.Unlock()
	m.publish(s)
}

// current reports whether no transition started after seq.
func (m *Manager) current(seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seq == seq
}

// commit applies fn only while seq is still the latest transition.
func (m *Manager) commit(seq uint64, fn func(*State)) bool {
	m.mu.Lock()
	if m.seq != seq {
		m.mu.Unlock()
		return false
	}
	s := m.applyLocked(fn)
	m.mu.Unlock()
	m.publish(s)
	return true
}

// set applies fn unconditionally and supersedes every transition in flight.
func (m *Manager) set(fn func(*State)) {
	m.mu.Lock()
	m.seq++
	s := m.applyLocked(fn)
	m.mu.Unlock()
	m.publish(s)
}

// applyLocked enforces the rule that a user never outlives its token.
func (m *Manager) applyLocked(fn func(*State)) State {
	fn(&m.state)
	if m.state.Token == "" {
		m.state.User = nil
	}
	if m.inFlight == 0 {
		m.state.IsHydrating = false
	}
	return m.snapshotLocked()
}

func (m *Manager) publish(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}
