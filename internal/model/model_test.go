package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPayload_Validate(t *testing.T) {
	err := LoginPayload{Username: "  ", Password: ""}.Validate()
	require.Error(t, err)

	var fe FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Username is required", fe.Field("username"))
	assert.Equal(t, "Password is required", fe.Field("password"))
	assert.True(t, errors.Is(err, ErrUsernameRequired))

	assert.NoError(t, LoginPayload{Username: "alice", Password: "secret"}.Validate())
}

func TestSignupPayload_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		payload SignupPayload
		field   string
		want    error
	}{
		{
			name:    "missing full name",
			payload: SignupPayload{Username: "alice", Password: "secret1"},
			field:   "fullName",
			want:    ErrFullNameRequired,
		},
		{
			name:    "short password",
			payload: SignupPayload{FullName: "Alice", Username: "alice", Password: "12345"},
			field:   "password",
			want:    ErrPasswordTooShort,
		},
		{
			name:    "bad profile url",
			payload: SignupPayload{FullName: "Alice", Username: "alice", Password: "secret1", ProfilePicURL: "ftp://x"},
			field:   "profilePicUrl",
			want:    ErrInvalidProfilePicURL,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.payload.Validate()
			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.want, fe[tc.field])
		})
	}

	ok := SignupPayload{FullName: "Alice", Username: "alice", Password: "secret1", ProfilePicURL: "https://x/y.png"}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, LoginPayload{Username: "alice", Password: "secret1"}, ok.Credentials())
}

func TestPostPayload_Validate(t *testing.T) {
	assert.NoError(t, PostPayload{Caption: "hi", ImageURL: "https://x/y.png"}.Validate())

	err := PostPayload{Caption: " ", ImageURL: "x/y.png"}.Validate()
	assert.True(t, errors.Is(err, ErrCaptionRequired))
	assert.True(t, errors.Is(err, ErrInvalidImageURL))
}

func TestCommentPayload_WhitespaceIsEmpty(t *testing.T) {
	assert.Equal(t, ErrCommentEmpty, CommentPayload{Content: " \n\t"}.Validate())
	assert.NoError(t, CommentPayload{Content: "nice"}.Validate())
}

func TestPost_LikeToggleRoundTrip(t *testing.T) {
	p := Post{ID: 1, LikedUsers: []string{"bob"}}

	liked := p.WithLike("alice", true)
	assert.True(t, liked.LikedBy("alice"))
	assert.Equal(t, 2, liked.LikeCount())
	assert.False(t, p.LikedBy("alice"), "receiver must not be mutated")

	unliked := liked.WithLike("alice", false)
	assert.ElementsMatch(t, p.LikedUsers, unliked.LikedUsers)

	twice := liked.WithLike("alice", true)
	assert.Equal(t, 2, twice.LikeCount(), "liking twice must not duplicate")
}

func TestTimestamp_Unmarshal(t *testing.T) {
	var c Comment
	require.NoError(t, json.Unmarshal([]byte(`{"username":"a","uploadedAt":"2024-05-01T10:20:30.123","comment":"x"}`), &c))
	assert.Equal(t, 2024, c.UploadedAt.Year())
	assert.Equal(t, 123*int(time.Millisecond), c.UploadedAt.Nanosecond())

	require.NoError(t, json.Unmarshal([]byte(`{"uploadedAt":"2024-05-01T10:20:30Z"}`), &c))
	assert.Equal(t, time.UTC, c.UploadedAt.Location())

	require.NoError(t, json.Unmarshal([]byte(`{"uploadedAt":null}`), &c))
	assert.True(t, c.UploadedAt.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"uploadedAt":"yesterday"}`), &c))
}

func TestComment_KeyDistinguishesDuplicates(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	c := Comment{Username: "bob", UploadedAt: ts, Comment: "same"}
	assert.NotEqual(t, c.Key(0), c.Key(1))
	assert.Equal(t, "bob-0-2024-01-02T03:04:05Z", c.Key(0))
}

func TestFindChat(t *testing.T) {
	chats := []ChatSummary{{ChatID: 3, Username: "dora"}}
	c, ok := FindChat(chats, "dora")
	assert.True(t, ok)
	assert.Equal(t, int64(3), c.ChatID)

	_, ok = FindChat(chats, "eve")
	assert.False(t, ok)
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "bob", NormalizeUsername("  @bob "))
}
