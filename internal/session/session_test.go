package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ministagram/internal/api"
	"ministagram/internal/model"
	"ministagram/internal/tokenstore"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockAuth struct {
	loginFn       func(ctx context.Context, p model.LoginPayload) (*model.AuthResponse, error)
	signupFn      func(ctx context.Context, p model.SignupPayload) (*model.SignUpResponse, error)
	currentUserFn func(ctx context.Context) (*model.User, error)

	mu         sync.Mutex
	loginCalls []model.LoginPayload
	meCalls    int
}

func (m *mockAuth) Login(ctx context.Context, p model.LoginPayload) (*model.AuthResponse, error) {
	m.mu.Lock()
	m.loginCalls = append(m.loginCalls, p)
	m.mu.Unlock()
	if m.loginFn != nil {
		return m.loginFn(ctx, p)
	}
	return &model.AuthResponse{Token: "tok"}, nil
}

func (m *mockAuth) Signup(ctx context.Context, p model.SignupPayload) (*model.SignUpResponse, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, p)
	}
	return &model.SignUpResponse{Message: "created"}, nil
}

func (m *mockAuth) CurrentUser(ctx context.Context) (*model.User, error) {
	m.mu.Lock()
	m.meCalls++
	m.mu.Unlock()
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx)
	}
	return &model.User{ID: 1, Username: "alice", FullName: "Alice"}, nil
}

type mockUsers struct {
	updateFn func(ctx context.Context, id int64, p model.UpdateUserPayload) (*model.User, error)
	ids      []int64
}

func (m *mockUsers) Update(ctx context.Context, id int64, p model.UpdateUserPayload) (*model.User, error) {
	m.ids = append(m.ids, id)
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return &model.User{ID: id}, nil
}

func newManager(auth *mockAuth, store tokenstore.Store) *Manager {
	return NewManager(auth, &mockUsers{}, store, nil)
}

func unauthorized() error {
	return &api.APIError{Method: "GET", Path: "/auth/me", Status: http.StatusUnauthorized}
}

// =============================================================================
// HYDRATE
// =============================================================================

func TestManager_StartsHydrating(t *testing.T) {
	m := newManager(&mockAuth{}, tokenstore.NewMemoryStore())

	_, err := m.RequireAuth()
	assert.ErrorIs(t, err, ErrHydrating)
	assert.True(t, m.Snapshot().IsHydrating)
}

func TestManager_Hydrate_NoToken(t *testing.T) {
	auth := &mockAuth{}
	m := newManager(auth, tokenstore.NewMemoryStore())

	require.NoError(t, m.Hydrate(context.Background()))

	s := m.Snapshot()
	assert.Nil(t, s.User)
	assert.Empty(t, s.Token)
	assert.False(t, s.IsHydrating)
	assert.Zero(t, auth.meCalls, "no token means no /auth/me")

	_, err := m.RequireAuth()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestManager_Hydrate_ValidToken(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Persist(ctx, "abc"))
	m := newManager(&mockAuth{}, store)

	require.NoError(t, m.Hydrate(ctx))

	user, err := m.RequireAuth()
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "abc", m.Snapshot().Token)
}

func TestManager_Hydrate_RejectedTokenIsCleared(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Persist(ctx, "stale"))
	m := newManager(&mockAuth{
		currentUserFn: func(ctx context.Context) (*model.User, error) { return nil, unauthorized() },
	}, store)

	err := m.Hydrate(ctx)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	token, _ := store.Read(ctx)
	assert.Empty(t, token)
	s := m.Snapshot()
	assert.Nil(t, s.User)
	assert.False(t, s.IsHydrating)
}

func TestManager_Hydrate_AnyFailureClears(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Persist(ctx, "abc"))
	m := newManager(&mockAuth{
		currentUserFn: func(ctx context.Context) (*model.User, error) { return nil, errors.New("connection refused") },
	}, store)

	require.Error(t, m.Hydrate(ctx))

	token, _ := store.Read(ctx)
	assert.Empty(t, token)
	assert.False(t, m.Snapshot().Authenticated())
}

func TestManager_Hydrate_TokenClearedMidFlight(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Persist(ctx, "abc"))
	m := newManager(&mockAuth{
		currentUserFn: func(ctx context.Context) (*model.User, error) {
			// another call got a 401 and cleared the store
			_ = store.Clear(ctx)
			return &model.User{ID: 1, Username: "alice"}, nil
		},
	}, store)

	require.Error(t, m.Hydrate(ctx))
	assert.Nil(t, m.Snapshot().User)
}

// =============================================================================
// LOGIN / SIGNUP / LOGOUT
// =============================================================================

func TestManager_Login_Success(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	auth := &mockAuth{}
	m := newManager(auth, store)
	require.NoError(t, m.Hydrate(ctx))

	err := m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	token, _ := store.Read(ctx)
	assert.Equal(t, "tok", token)
	s := m.Snapshot()
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "alice", s.User.Username)
	assert.False(t, s.IsHydrating)
}

func TestManager_Login_ReturnsAPIErrorUnchanged(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	notFound := &api.APIError{Method: "POST", Path: "/auth/login", Status: http.StatusNotFound}
	m := newManager(&mockAuth{
		loginFn: func(ctx context.Context, p model.LoginPayload) (*model.AuthResponse, error) { return nil, notFound },
	}, store)

	err := m.Login(ctx, model.LoginPayload{Username: "ghost", Password: "secret"})

	assert.Same(t, notFound, err)
	assert.True(t, api.IsAccountNotFound(err))
	assert.False(t, m.Snapshot().Authenticated())
	assert.False(t, m.Snapshot().IsHydrating)
}

func TestManager_Login_ProfileFailureClearsStore(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	m := newManager(&mockAuth{
		currentUserFn: func(ctx context.Context) (*model.User, error) { return nil, errors.New("boom") },
	}, store)

	require.Error(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))

	token, _ := store.Read(ctx)
	assert.Empty(t, token)
	assert.Nil(t, m.Snapshot().User)
}

func TestManager_Login_EmptyTokenFails(t *testing.T) {
	m := newManager(&mockAuth{
		loginFn: func(ctx context.Context, p model.LoginPayload) (*model.AuthResponse, error) {
			return &model.AuthResponse{}, nil
		},
	}, tokenstore.NewMemoryStore())

	assert.Error(t, m.Login(context.Background(), model.LoginPayload{Username: "a", Password: "b"}))
	assert.False(t, m.Snapshot().Authenticated())
}

func TestManager_Signup_LogsInWithSameCredentials(t *testing.T) {
	ctx := context.Background()
	auth := &mockAuth{}
	m := newManager(auth, tokenstore.NewMemoryStore())

	err := m.Signup(ctx, model.SignupPayload{Username: "bob", Password: "hunter22", FullName: "Bob"})
	require.NoError(t, err)

	require.Len(t, auth.loginCalls, 1)
	assert.Equal(t, model.LoginPayload{Username: "bob", Password: "hunter22"}, auth.loginCalls[0])
	assert.True(t, m.Snapshot().Authenticated())
}

func TestManager_Signup_FailureSkipsLogin(t *testing.T) {
	auth := &mockAuth{
		signupFn: func(ctx context.Context, p model.SignupPayload) (*model.SignUpResponse, error) {
			return nil, &api.APIError{Status: http.StatusConflict}
		},
	}
	m := newManager(auth, tokenstore.NewMemoryStore())

	err := m.Signup(context.Background(), model.SignupPayload{Username: "bob", Password: "hunter22", FullName: "Bob"})

	assert.Equal(t, http.StatusConflict, api.StatusCode(err))
	assert.Empty(t, auth.loginCalls)
}

func TestManager_Logout_ClearsSynchronously(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	m := newManager(&mockAuth{}, store)
	require.NoError(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))

	m.Logout(ctx)

	token, _ := store.Read(ctx)
	assert.Empty(t, token)
	s := m.Snapshot()
	assert.Nil(t, s.User)
	assert.Empty(t, s.Token)
	_, err := m.RequireAuth()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

type failingStore struct{ tokenstore.Store }

func (failingStore) Clear(ctx context.Context) error { return errors.New("disk full") }

func TestManager_Logout_StoreFailureStillResets(t *testing.T) {
	ctx := context.Background()
	store := failingStore{tokenstore.NewMemoryStore()}
	m := newManager(&mockAuth{}, store)
	require.NoError(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))

	m.Logout(ctx)

	assert.False(t, m.Snapshot().Authenticated())
}

// =============================================================================
// PROFILE
// =============================================================================

func TestManager_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	auth := &mockAuth{}
	users := &mockUsers{}
	m := NewManager(auth, users, tokenstore.NewMemoryStore(), nil)
	require.NoError(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))

	name := "Alice Liddell"
	auth.currentUserFn = func(ctx context.Context) (*model.User, error) {
		return &model.User{ID: 1, Username: "alice", FullName: name}, nil
	}
	_, err := m.UpdateProfile(ctx, model.UpdateUserPayload{FullName: &name})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, users.ids)
	assert.Equal(t, name, m.CurrentUser().FullName)
}

func TestManager_UpdateProfile_RequiresAuth(t *testing.T) {
	users := &mockUsers{}
	m := NewManager(&mockAuth{}, users, tokenstore.NewMemoryStore(), nil)
	require.NoError(t, m.Hydrate(context.Background()))

	_, err := m.UpdateProfile(context.Background(), model.UpdateUserPayload{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, users.ids)
}

func TestManager_UpdateProfile_ValidatesBeforeRequest(t *testing.T) {
	ctx := context.Background()
	users := &mockUsers{}
	m := NewManager(&mockAuth{}, users, tokenstore.NewMemoryStore(), nil)
	require.NoError(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))

	bad := "ftp://example.com/me.png"
	_, err := m.UpdateProfile(ctx, model.UpdateUserPayload{ProfilePicURL: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidProfilePicURL)
	assert.Empty(t, users.ids)
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func TestManager_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	m := newManager(&mockAuth{}, tokenstore.NewMemoryStore())
	require.NoError(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))

	s := m.Snapshot()
	s.User.Username = "mallory"

	assert.Equal(t, "alice", m.CurrentUser().Username)
}

func TestManager_SubscribeSeesTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newManager(&mockAuth{}, tokenstore.NewMemoryStore())
	ch := m.Subscribe(ctx)

	require.NoError(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))

	var last State
	sawHydrating := false
	for len(ch) > 0 {
		last = <-ch
		if last.IsHydrating {
			sawHydrating = true
		}
		// a user never outlives its token
		if last.User != nil {
			assert.NotEmpty(t, last.Token)
		}
	}
	assert.True(t, sawHydrating)
	assert.True(t, last.Authenticated())
	assert.False(t, last.IsHydrating)
}

func TestManager_SubscribeClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newManager(&mockAuth{}, tokenstore.NewMemoryStore())
	ch := m.Subscribe(ctx)

	cancel()
	for range ch {
	}

	// publishing after the subscriber left must not panic
	require.NoError(t, m.Hydrate(context.Background()))
}

// =============================================================================
// OVERLAPPING TRANSITIONS
// =============================================================================

// blockFirstMe makes the first CurrentUser call wait for release and then return
// result; later calls answer alice straight away.
func blockFirstMe(entered, release chan struct{}, result error) func(ctx context.Context) (*model.User, error) {
	var once sync.Once
	return func(ctx context.Context) (*model.User, error) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(entered)
			<-release
			if result != nil {
				return nil, result
			}
		}
		return &model.User{ID: 1, Username: "alice"}, nil
	}
}

func TestManager_HydrateOvertakenByLogin(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Persist(ctx, "old"))
	entered, release := make(chan struct{}), make(chan struct{})
	m := newManager(&mockAuth{
		loginFn: func(ctx context.Context, p model.LoginPayload) (*model.AuthResponse, error) {
			return &model.AuthResponse{Token: "new"}, nil
		},
		currentUserFn: blockFirstMe(entered, release, unauthorized()),
	}, store)

	done := make(chan error, 1)
	go func() { done <- m.Hydrate(ctx) }()
	<-entered
	require.NoError(t, m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}))
	close(release)
	require.NoError(t, <-done)

	token, _ := store.Read(ctx)
	assert.Equal(t, "new", token)
	s := m.Snapshot()
	assert.Equal(t, "new", s.Token)
	require.NotNil(t, s.User)
	assert.Equal(t, "alice", s.User.Username)
	assert.False(t, s.IsHydrating)
}

func TestManager_LogoutDuringLogin(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.NewMemoryStore()
	entered, release := make(chan struct{}), make(chan struct{})
	m := newManager(&mockAuth{currentUserFn: blockFirstMe(entered, release, nil)}, store)

	done := make(chan error, 1)
	go func() { done <- m.Login(ctx, model.LoginPayload{Username: "alice", Password: "secret"}) }()
	<-entered
	m.Logout(ctx)
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	token, _ := store.Read(ctx)
	assert.Empty(t, token)
	s := m.Snapshot()
	assert.Nil(t, s.User)
	assert.False(t, s.IsHydrating)
}
