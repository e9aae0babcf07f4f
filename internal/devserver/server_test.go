package devserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ministagram/internal/api"
	"ministagram/internal/devserver"
	"ministagram/internal/model"
	"ministagram/internal/tokenstore"
)

// =============================================================================
// Helpers
// =============================================================================

// clock ticks one second per reading so ordering by time is deterministic.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newServer(t *testing.T) (*devserver.Server, *httptest.Server) {
	t.Helper()
	c := &clock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	srv := devserver.New(devserver.Options{BcryptCost: bcrypt.MinCost, Now: c.now})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

// signedIn registers username and returns a client holding its token.
func signedIn(t *testing.T, ts *httptest.Server, username string, private bool) *api.Client {
	t.Helper()
	ctx := context.Background()
	c := api.NewClient(ts.URL, tokenstore.NewMemoryStore())
	_, err := c.Auth.Signup(ctx, model.SignupPayload{
		FullName:       username + " Example",
		Username:       username,
		Password:       "secret1",
		PrivateAccount: private,
	})
	require.NoError(t, err)
	resp, err := c.Auth.Login(ctx, model.LoginPayload{Username: username, Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, c.Tokens().Persist(ctx, resp.Token))
	return c
}

func usernames(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

// =============================================================================
// Auth
// =============================================================================

func TestAuth_LoginStatuses(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	signedIn(t, ts, "alice", false)
	anon := api.NewClient(ts.URL, tokenstore.NewMemoryStore())

	_, err := anon.Auth.Login(ctx, model.LoginPayload{Username: "ghost", Password: "whatever"})
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
	assert.True(t, api.IsAccountNotFound(err))

	_, err = anon.Auth.Login(ctx, model.LoginPayload{Username: "alice", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, api.StatusCode(err))

	_, err = anon.Auth.Login(ctx, model.LoginPayload{Username: "alice"})
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
}

func TestAuth_SignupConflictAndValidation(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	signedIn(t, ts, "alice", false)
	anon := api.NewClient(ts.URL, tokenstore.NewMemoryStore())

	_, err := anon.Auth.Signup(ctx, model.SignupPayload{FullName: "A", Username: "alice", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))

	_, err = anon.Auth.Signup(ctx, model.SignupPayload{FullName: "B", Username: "bob", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
}

func TestAuth_MeRequiresToken(t *testing.T) {
	ctx := context.Background()
	srv, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)

	me, err := alice.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	anon := api.NewClient(ts.URL, tokenstore.NewMemoryStore())
	_, err = anon.Auth.CurrentUser(ctx)
	assert.True(t, api.IsUnauthorized(err))

	store := tokenstore.NewMemoryStore()
	require.NoError(t, store.Persist(ctx, "garbage"))
	bad := api.NewClient(ts.URL, store)
	_, err = bad.Auth.CurrentUser(ctx)
	assert.True(t, api.IsUnauthorized(err))
	token, _ := store.Read(ctx)
	assert.Empty(t, token, "a 401 clears the client's token")

	tok, err := srv.IssueToken(me.ID)
	require.NoError(t, err)
	require.NoError(t, store.Persist(ctx, tok))
	_, err = bad.Auth.CurrentUser(ctx)
	assert.NoError(t, err)
}

func TestUsers_UpdateOwnProfileOnly(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	bob := signedIn(t, ts, "bob", false)
	me, err := alice.Auth.CurrentUser(ctx)
	require.NoError(t, err)

	name := "Alice L."
	updated, err := alice.Users.Update(ctx, me.ID, model.UpdateUserPayload{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)

	_, err = bob.Users.Update(ctx, me.ID, model.UpdateUserPayload{FullName: &name})
	assert.True(t, api.IsForbidden(err))

	got, err := bob.Users.Get(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, name, got.FullName)
}

// =============================================================================
// Posts, likes, comments, feed
// =============================================================================

func TestPosts_NewestFirstAndOwnership(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	bob := signedIn(t, ts, "bob", false)

	first, err := alice.Posts.Create(ctx, model.PostPayload{Caption: "one", ImageURL: "https://img/1.jpg"})
	require.NoError(t, err)
	_, err = alice.Posts.Create(ctx, model.PostPayload{Caption: "two", ImageURL: "https://img/2.jpg"})
	require.NoError(t, err)

	posts, err := bob.Posts.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "two", posts[0].Caption)
	assert.Equal(t, "alice", posts[0].User.Username)

	err = bob.Posts.Delete(ctx, first.ID)
	assert.True(t, api.IsForbidden(err))

	require.NoError(t, alice.Posts.DeleteAllMine(ctx))
	mine, err := alice.Posts.ListMine(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestPosts_LikeUnlikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	bob := signedIn(t, ts, "bob", false)
	post, err := alice.Posts.Create(ctx, model.PostPayload{Caption: "hi", ImageURL: "https://img/1.jpg"})
	require.NoError(t, err)

	require.NoError(t, bob.Posts.Like(ctx, post.ID))
	require.NoError(t, bob.Posts.Like(ctx, post.ID))
	posts, err := bob.Posts.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, posts[0].LikedUsers)

	require.NoError(t, bob.Posts.Unlike(ctx, post.ID))
	posts, err = bob.Posts.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, posts[0].LikedUsers)

	assert.Equal(t, http.StatusNotFound, api.StatusCode(bob.Posts.Like(ctx, 9999)))
}

func TestComments_RoundTrip(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	post, err := alice.Posts.Create(ctx, model.PostPayload{Caption: "hi", ImageURL: "https://img/1.jpg"})
	require.NoError(t, err)

	created, err := alice.Comments.Create(ctx, post.ID, model.CommentPayload{Content: "  nice  "})
	require.NoError(t, err)
	assert.Equal(t, "nice", created.Comment)

	_, err = alice.Comments.Create(ctx, post.ID, model.CommentPayload{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))

	comments, err := alice.Comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].Username)
	assert.False(t, comments[0].UploadedAt.IsZero())
}

func TestFeed_FollowedAndOwnPosts(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	bob := signedIn(t, ts, "bob", false)
	carol := signedIn(t, ts, "carol", false)

	_, err := bob.Posts.Create(ctx, model.PostPayload{Caption: "from bob", ImageURL: "https://img/b.jpg"})
	require.NoError(t, err)
	_, err = carol.Posts.Create(ctx, model.PostPayload{Caption: "from carol", ImageURL: "https://img/c.jpg"})
	require.NoError(t, err)
	own, err := alice.Posts.Create(ctx, model.PostPayload{Caption: "mine", ImageURL: "https://img/a.jpg"})
	require.NoError(t, err)
	require.NoError(t, alice.Follows.Follow(ctx, "bob"))
	require.NoError(t, alice.Posts.Like(ctx, own.ID))

	feed, err := alice.Feed.List(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "mine", feed[0].Caption)
	assert.True(t, feed[0].LikedByYou)
	assert.Equal(t, 1, feed[0].NoOfLikes)
	assert.Equal(t, "bob", feed[1].Username)
}

// =============================================================================
// Follows
// =============================================================================

func TestFollows_PrivateAccountRequestFlow(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	carol := signedIn(t, ts, "carol", true)

	require.NoError(t, alice.Follows.Follow(ctx, "carol"))
	err := alice.Follows.Follow(ctx, "carol")
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))

	_, err = alice.Follows.FollowersOf(ctx, "carol")
	assert.True(t, api.IsForbidden(err), "private lists are hidden from non-followers")

	// posts are still served; hiding them is the client's job
	_, err = alice.Posts.ListByUser(ctx, "carol")
	assert.NoError(t, err)

	reqs, err := carol.Follows.Requests(ctx)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "alice", reqs[0].Username)

	require.NoError(t, carol.Follows.Accept(ctx, "alice"))
	followers, err := alice.Follows.FollowersOf(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(followers))

	following, err := alice.Follows.Following(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, usernames(following))

	err = carol.Follows.Reject(ctx, "alice")
	assert.Equal(t, http.StatusNotFound, api.StatusCode(err))
}

func TestFollows_PublicFollowAndUnfollow(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	bob := signedIn(t, ts, "bob", false)

	require.NoError(t, alice.Follows.Follow(ctx, "bob"))
	followers, err := bob.Follows.Followers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(followers))

	require.NoError(t, alice.Follows.Unfollow(ctx, "bob"))
	followers, err = bob.Follows.Followers(ctx)
	require.NoError(t, err)
	assert.Empty(t, followers)

	assert.Equal(t, http.StatusNotFound, api.StatusCode(alice.Follows.Unfollow(ctx, "bob")))
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(alice.Follows.Follow(ctx, "alice")))
}

func TestFollows_GoingPublicAcceptsPending(t *testing.T) {
	ctx := context.Background()
	_, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	carol := signedIn(t, ts, "carol", true)
	require.NoError(t, alice.Follows.Follow(ctx, "carol"))

	me, err := carol.Auth.CurrentUser(ctx)
	require.NoError(t, err)
	public := false
	_, err = carol.Users.Update(ctx, me.ID, model.UpdateUserPayload{PrivateAccount: &public})
	require.NoError(t, err)

	followers, err := carol.Follows.Followers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(followers))
}

// =============================================================================
// Chats
// =============================================================================

func TestChats_SendListAndSeen(t *testing.T) {
	ctx := context.Background()
	srv, ts := newServer(t)
	alice := signedIn(t, ts, "alice", false)
	bob := signedIn(t, ts, "bob", false)

	msgs, err := alice.Chat.Messages(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	sent, err := alice.Chat.Send(ctx, "bob", model.SendMessagePayload{Content: "hey"})
	require.NoError(t, err)
	assert.Equal(t, "hey", sent.Content)
	assert.NotZero(t, sent.ChatID)

	chats, err := bob.Chat.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "alice", chats[0].Username)
	assert.Equal(t, "hey", chats[0].LastMessage)

	bobUser, err := srv.Store().UserByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Store().Unseen(bobUser.ID, sent.ChatID))
	require.NoError(t, bob.Chat.MarkSeen(ctx, sent.ChatID))
	assert.Equal(t, 0, srv.Store().Unseen(bobUser.ID, sent.ChatID))

	thread, err := bob.Chat.Messages(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "alice", thread[0].Sender)

	carol := signedIn(t, ts, "carol", false)
	assert.Equal(t, http.StatusNotFound, api.StatusCode(carol.Chat.MarkSeen(ctx, sent.ChatID)))
}

func TestHealthAndCORS(t *testing.T) {
	_, ts := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/feed", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
