package model

// FollowRequest is a pending incoming request. Only private accounts receive them.
type FollowRequest struct {
	Username    string    `json:"username"`
	RequestedAt Timestamp `json:"requestedAt"`
}

func (r FollowRequest) Key() string {
	return r.Username + "-" + r.RequestedAt.Key()
}

// FollowAction is the verb used on a pending request.
type FollowAction string

const (
	FollowAccept FollowAction = "accept"
	FollowReject FollowAction = "reject"
)

func (a FollowAction) Valid() bool {
	return a == FollowAccept || a == FollowReject
}
