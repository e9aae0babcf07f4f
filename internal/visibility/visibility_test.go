package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ministagram/internal/model"
)

var (
	alice = model.User{ID: 1, Username: "alice"}
	bob   = model.User{ID: 2, Username: "bob"}
	carol = model.User{ID: 3, Username: "carol", PrivateAccount: true}
)

func TestPostsHidden_TruthTable(t *testing.T) {
	tests := []struct {
		private bool
		isSelf  bool
		follow  FollowState
		hidden  bool
	}{
		{false, false, NotFollowing, false},
		{false, false, Unknown, false},
		{false, true, NotFollowing, false},
		{true, true, NotFollowing, false},
		{true, true, Unknown, false},
		{true, false, Following, false},
		{true, false, NotFollowing, true},
		{true, false, Unknown, true},
	}
	for _, tt := range tests {
		got := PostsHidden(tt.private, tt.isSelf, tt.follow)
		assert.Equal(t, tt.hidden, got, "private=%v self=%v follow=%s", tt.private, tt.isSelf, tt.follow)
	}
}

func TestDerive_PrivateNotFollowed(t *testing.T) {
	rel := Derive(Input{
		Current:    &alice,
		Target:     &carol,
		Followers:  []model.User{bob},
		Following:  []model.User{alice},
		ListsKnown: true,
	})

	assert.False(t, rel.IsSelf)
	assert.Equal(t, NotFollowing, rel.IFollow)
	assert.Equal(t, Following, rel.FollowsMe)
	assert.True(t, rel.FollowedBy())
	assert.True(t, rel.PostsHidden)
	assert.True(t, rel.CanFollow())
}

func TestDerive_PrivateFollowed(t *testing.T) {
	rel := Derive(Input{
		Current:    &alice,
		Target:     &carol,
		Followers:  []model.User{alice, bob},
		ListsKnown: true,
	})

	assert.True(t, rel.Following())
	assert.False(t, rel.PostsHidden)
}

func TestDerive_UnknownListsHidePrivatePosts(t *testing.T) {
	rel := Derive(Input{Current: &alice, Target: &carol})

	assert.Equal(t, Unknown, rel.IFollow)
	assert.Equal(t, Unknown, rel.FollowsMe)
	assert.False(t, rel.Following())
	assert.True(t, rel.PostsHidden)
}

func TestDerive_SelfByIDOrUsername(t *testing.T) {
	self := carol
	assert.True(t, Derive(Input{Current: &self, Target: &carol}).IsSelf)

	sameName := model.User{Username: "carol"}
	rel := Derive(Input{Current: &sameName, Target: &carol})
	assert.True(t, rel.IsSelf)
	assert.False(t, rel.PostsHidden)
	assert.False(t, rel.CanFollow())
}

func TestDerive_PublicAlwaysVisible(t *testing.T) {
	rel := Derive(Input{Current: &alice, Target: &bob, ListsKnown: true})
	assert.False(t, rel.PostsHidden)
	assert.Equal(t, NotFollowing, rel.IFollow)
}

func TestDerive_NilTarget(t *testing.T) {
	assert.Equal(t, Relationship{}, Derive(Input{Current: &alice}))
}
