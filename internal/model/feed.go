package model

// FeedItem is the feed endpoint's pre-aggregated projection of a post. It is not a
// Post: counts come from the server and there is no liked-user list.
type FeedItem struct {
	PostID        int64     `json:"postId"`
	Caption       string    `json:"caption"`
	UploadedAt    Timestamp `json:"uploadedAt"`
	ImageURL      string    `json:"imageUrl"`
	Username      string    `json:"username"`
	ProfilePicURL string    `json:"profilePicUrl,omitempty"`
	NoOfLikes     int       `json:"noOfLikes"`
	NoOfComments  int       `json:"noOfComments"`
	LikedByYou    bool      `json:"likedByYou"`
}
