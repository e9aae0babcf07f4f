package model

import "strings"

// Post is a single post as returned by the per-user and own-post endpoints.
// len(LikedUsers) is the like count; there is no separate counter.
type Post struct {
	ID         int64     `json:"id"`
	Caption    string    `json:"caption"`
	ImageURL   string    `json:"imageUrl"`
	UploadedAt Timestamp `json:"uploadedAt"`
	LikedUsers []string  `json:"likedUsers"`
	User       User      `json:"user"`
}

// LikedBy reports whether username is in the liked set.
func (p Post) LikedBy(username string) bool {
	for _, u := range p.LikedUsers {
		if u == username {
			return true
		}
	}
	return false
}

func (p Post) LikeCount() int {
	return len(p.LikedUsers)
}

// WithLike returns a copy of p with username added to or removed from the liked set.
func (p Post) WithLike(username string, liked bool) Post {
	out := p
	out.LikedUsers = make([]string, 0, len(p.LikedUsers)+1)
	for _, u := range p.LikedUsers {
		if u != username {
			out.LikedUsers = append(out.LikedUsers, u)
		}
	}
	if liked {
		out.LikedUsers = append(out.LikedUsers, username)
	}
	return out
}

// PostPayload is the body of POST /posts.
type PostPayload struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"imageUrl"`
}

func (p PostPayload) Validate() error {
	fe := FieldErrors{}
	if isBlank(p.Caption) {
		fe["caption"] = ErrCaptionRequired
	}
	if !IsHTTPURL(strings.TrimSpace(p.ImageURL)) {
		fe["imageUrl"] = ErrInvalidImageURL
	}
	return fe.orNil()
}
