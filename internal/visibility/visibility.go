// Package visibility derives how the signed-in user relates to another account and
// whether that account's posts may be shown.
package visibility

import "ministagram/internal/model"

// FollowState is a relationship edge that may not be known.
type FollowState int

const (
	Unknown FollowState = iota
	NotFollowing
	Following
)

func (s FollowState) String() string {
	switch s {
	case Following:
		return "following"
	case NotFollowing:
		return "not following"
	default:
		return "unknown"
	}
}

// Input is everything Derive looks at. Followers and Following are the target's
// lists; ListsKnown is false when they could not be loaded.
type Input struct {
	Current    *model.User
	Target     *model.User
	Followers  []model.User
	Following  []model.User
	ListsKnown bool
}

// Relationship is the derived view of Current towards Target.
type Relationship struct {
	IsSelf      bool
	IFollow     FollowState // Current appears in Target's followers
	FollowsMe   FollowState // Current appears in Target's following
	PostsHidden bool
}

// Following reports IFollow as a plain boolean; Unknown counts as false.
func (r Relationship) Following() bool { return r.IFollow == Following }

// FollowedBy reports FollowsMe as a plain boolean.
func (r Relationship) FollowedBy() bool { return r.FollowsMe == Following }

// CanFollow is false for one's own profile.
func (r Relationship) CanFollow() bool { return !r.IsSelf }

// Derive computes the relationship. A nil Target yields the zero Relationship; a nil
// Current is treated as a stranger.
func Derive(in Input) Relationship {
	if in.Target == nil {
		return Relationship{}
	}
	var rel Relationship
	if in.Current != nil {
		rel.IsSelf = in.Current.ID == in.Target.ID || in.Current.Username == in.Target.Username
		if in.ListsKnown {
			rel.IFollow = membership(in.Followers, in.Current.ID)
			rel.FollowsMe = membership(in.Following, in.Current.ID)
		}
	} else if in.ListsKnown {
		rel.IFollow, rel.FollowsMe = NotFollowing, NotFollowing
	}
	rel.PostsHidden = PostsHidden(in.Target.PrivateAccount, rel.IsSelf, rel.IFollow)
	return rel
}

// PostsHidden is the gating rule: a private account's posts are shown only to the
// owner and to confirmed followers.
func PostsHidden(private, isSelf bool, iFollow FollowState) bool {
	return private && !isSelf && iFollow != Following
}

func membership(users []model.User, id int64) FollowState {
	if model.ContainsUser(users, id) {
		return Following
	}
	return NotFollowing
}
