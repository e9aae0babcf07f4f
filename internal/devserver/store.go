package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"ministagram/internal/model"
)

type userRecord struct {
	model.User
	passwordHash []byte
}

type postRecord struct {
	id         int64
	ownerID    int64
	caption    string
	imageURL   string
	uploadedAt time.Time
	likes      []int64 // in like order
}

type commentRecord struct {
	id         int64
	postID     int64
	userID     int64
	content    string
	uploadedAt time.Time
}

type followKey struct{ follower, followee int64 }

type requestRecord struct {
	from, to    int64
	requestedAt time.Time
}

type messageRecord struct {
	senderID int64
	content  string
	sentAt   time.Time
}

type chatRecord struct {
	id       int64
	members  [2]int64
	messages []messageRecord
	seenAt   map[int64]time.Time
}

func (c *chatRecord) other(userID int64) int64 {
	if c.members[0] == userID {
		return c.members[1]
	}
	return c.members[0]
}

// Store is the in-memory backing state of the development API. All methods are safe
// for concurrent use.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	bcryptCost int
	nextID     int64

	users      map[int64]*userRecord
	byUsername map[string]int64
	posts      map[int64]*postRecord
	comments   map[int64]*commentRecord
	follows    map[followKey]time.Time
	requests   []requestRecord
	chats      map[int64]*chatRecord
}

// NewStore returns an empty store. now may be nil.
func NewStore(now func() time.Time, bcryptCost int) *Store {
	if now == nil {
		now = time.Now
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{
		now:        now,
		bcryptCost: bcryptCost,
		users:      make(map[int64]*userRecord),
		byUsername: make(map[string]int64),
		posts:      make(map[int64]*postRecord),
		comments:   make(map[int64]*commentRecord),
		follows:    make(map[followKey]time.Time),
		chats:      make(map[int64]*chatRecord),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser registers an account with a bcrypt-hashed password.
func (s *Store) CreateUser(p model.SignupPayload) (model.User, error) {
	username := strings.TrimSpace(p.Username)
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUsername[username]; ok {
		return model.User{}, ErrUsernameExists
	}
	rec := &userRecord{
		User: model.User{
			ID:             s.id(),
			Username:       username,
			FullName:       strings.TrimSpace(p.FullName),
			ProfilePicURL:  p.ProfilePicURL,
			PrivateAccount: p.PrivateAccount,
		},
		passwordHash: hash,
	}
	s.users[rec.ID] = rec
	s.byUsername[username] = rec.ID
	return rec.User, nil
}

// Authenticate returns the user for valid credentials. An unknown username is
// ErrUserNotFound, a wrong password ErrInvalidCredentials.
func (s *Store) Authenticate(username, password string) (model.User, error) {
	s.mu.RLock()
	id, ok := s.byUsername[strings.TrimSpace(username)]
	var rec userRecord
	if ok {
		rec = *s.users[id]
	}
	s.mu.RUnlock()
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return rec.User, nil
}

func (s *Store) UserByID(id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return rec.User, nil
}

func (s *Store) UserByUsername(username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userByUsernameLocked(username)
}

func (s *Store) userByUsernameLocked(username string) (model.User, error) {
	id, ok := s.byUsername[username]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return s.users[id].User, nil
}

// Users lists every account in registration order.
func (s *Store) Users() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UpdateUser applies the non-nil fields of p.
func (s *Store) UpdateUser(id int64, p model.UpdateUserPayload) (model.User, error) {
	var hash []byte
	if p.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*p.Password), s.bcryptCost)
		if err != nil {
			return model.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	if p.Username != nil {
		name := strings.TrimSpace(*p.Username)
		if other, taken := s.byUsername[name]; taken && other != id {
			return model.User{}, ErrUsernameExists
		}
		delete(s.byUsername, rec.Username)
		rec.Username = name
		s.byUsername[name] = id
	}
	if p.FullName != nil {
		rec.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.ProfilePicURL != nil {
		rec.ProfilePicURL = *p.ProfilePicURL
	}
	if p.PrivateAccount != nil {
		rec.PrivateAccount = *p.PrivateAccount
		if !rec.PrivateAccount {
			s.acceptAllLocked(id)
		}
	}
	if hash != nil {
		rec.passwordHash = hash
	}
	return rec.User, nil
}

// =============================================================================
// POSTS
// =============================================================================

func (s *Store) CreatePost(ownerID int64, p model.PostPayload) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[ownerID]; !ok {
		return model.Post{}, ErrUserNotFound
	}
	rec := &postRecord{
		id:         s.id(),
		ownerID:    ownerID,
		caption:    strings.TrimSpace(p.Caption),
		imageURL:   strings.TrimSpace(p.ImageURL),
		uploadedAt: s.now(),
	}
	s.posts[rec.id] = rec
	return s.postLocked(rec), nil
}

// PostsByOwner returns the owner's posts, newest first.
func (s *Store) PostsByOwner(ownerID int64) []model.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Post
	for _, rec := range s.sortedPostsLocked(func(p *postRecord) bool { return p.ownerID == ownerID }) {
		out = append(out, s.postLocked(rec))
	}
	if out == nil {
		out = []model.Post{}
	}
	return out
}

func (s *Store) DeletePost(userID, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	if rec.ownerID != userID {
		return ErrNotOwner
	}
	s.deletePostLocked(postID)
	return nil
}

// DeleteAllPosts removes every post owned by userID and returns how many went.
func (s *Store) DeleteAllPosts(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.posts {
		if rec.ownerID == userID {
			s.deletePostLocked(id)
			n++
		}
	}
	return n
}

func (s *Store) deletePostLocked(postID int64) {
	delete(s.posts, postID)
	for id, c := range s.comments {
		if c.postID == postID {
			delete(s.comments, id)
		}
	}
}

// SetLiked adds or removes userID from the post's likes. Both directions are
// idempotent.
func (s *Store) SetLiked(userID, postID int64, liked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	kept := rec.likes[:0:0]
	for _, id := range rec.likes {
		if id != userID {
			kept = append(kept, id)
		}
	}
	if liked {
		kept = append(kept, userID)
	}
	rec.likes = kept
	return nil
}

func (s *Store) sortedPostsLocked(keep func(*postRecord) bool) []*postRecord {
	var out []*postRecord
	for _, rec := range s.posts {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].uploadedAt.Equal(out[j].uploadedAt) {
			return out[i].uploadedAt.After(out[j].uploadedAt)
		}
		return out[i].id > out[j].id
	})
	return out
}

func (s *Store) postLocked(rec *postRecord) model.Post {
	liked := make([]string, 0, len(rec.likes))
	for _, id := range rec.likes {
		if u, ok := s.users[id]; ok {
			liked = append(liked, u.Username)
		}
	}
	return model.Post{
		ID:         rec.id,
		Caption:    rec.caption,
		ImageURL:   rec.imageURL,
		UploadedAt: model.NewTimestamp(rec.uploadedAt),
		LikedUsers: liked,
		User:       s.users[rec.ownerID].User,
	}
}

// Feed returns the viewer's posts and those of everyone they follow, newest first.
func (s *Store) Feed(viewerID int64) []model.FeedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.sortedPostsLocked(func(p *postRecord) bool {
		if p.ownerID == viewerID {
			return true
		}
		_, ok := s.follows[followKey{viewerID, p.ownerID}]
		return ok
	})
	out := make([]model.FeedItem, 0, len(recs))
	for _, rec := range recs {
		owner := s.users[rec.ownerID]
		item := model.FeedItem{
			PostID:        rec.id,
			Caption:       rec.caption,
			UploadedAt:    model.NewTimestamp(rec.uploadedAt),
			ImageURL:      rec.imageURL,
			Username:      owner.Username,
			ProfilePicURL: owner.ProfilePicURL,
			NoOfLikes:     len(rec.likes),
		}
		for _, id := range rec.likes {
			if id == viewerID {
				item.LikedByYou = true
			}
		}
		for _, c := range s.comments {
			if c.postID == rec.id {
				item.NoOfComments++
			}
		}
		out = append(out, item)
	}
	return out
}

// =============================================================================
// COMMENTS
// =============================================================================

// Comments lists a post's comments, oldest first.
func (s *Store) Comments(postID int64) ([]model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.posts[postID]; !ok {
		return nil, ErrPostNotFound
	}
	var recs []*commentRecord
	for _, c := range s.comments {
		if c.postID == postID {
			recs = append(recs, c)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].id < recs[j].id })
	out := make([]model.Comment, 0, len(recs))
	for _, c := range recs {
		out = append(out, s.commentLocked(c))
	}
	return out, nil
}

func (s *Store) AddComment(userID, postID int64, content string) (model.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[postID]; !ok {
		return model.Comment{}, ErrPostNotFound
	}
	rec := &commentRecord{
		id:         s.id(),
		postID:     postID,
		userID:     userID,
		content:    strings.TrimSpace(content),
		uploadedAt: s.now(),
	}
	s.comments[rec.id] = rec
	return s.commentLocked(rec), nil
}

// DeleteComment lets the comment's author or the post's owner remove it.
func (s *Store) DeleteComment(userID, commentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[commentID]
	if !ok {
		return ErrCommentNotFound
	}
	post := s.posts[c.postID]
	if c.userID != userID && (post == nil || post.ownerID != userID) {
		return ErrNotOwner
	}
	delete(s.comments, commentID)
	return nil
}

func (s *Store) commentLocked(c *commentRecord) model.Comment {
	return model.Comment{
		Username:   s.users[c.userID].Username,
		UploadedAt: model.NewTimestamp(c.uploadedAt),
		Comment:    c.content,
	}
}

// =============================================================================
// FOLLOWS
// =============================================================================

// Follow follows target, or files a pending request when target is private. The
// returned bool is true for a pending request.
func (s *Store) Follow(followerID int64, target string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	followee, err := s.userByUsernameLocked(target)
	if err != nil {
		return false, err
	}
	if followee.ID == followerID {
		return false, ErrCannotFollowSelf
	}
	key := followKey{followerID, followee.ID}
	if _, ok := s.follows[key]; ok {
		return false, ErrAlreadyFollowing
	}
	if !followee.PrivateAccount {
		s.follows[key] = s.now()
		return false, nil
	}
	for _, r := range s.requests {
		if r.from == followerID && r.to == followee.ID {
			return true, ErrAlreadyRequested
		}
	}
	s.requests = append(s.requests, requestRecord{from: followerID, to: followee.ID, requestedAt: s.now()})
	return true, nil
}

// Unfollow removes the edge, or withdraws a pending request.
func (s *Store) Unfollow(followerID int64, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	followee, err := s.userByUsernameLocked(target)
	if err != nil {
		return err
	}
	key := followKey{followerID, followee.ID}
	if _, ok := s.follows[key]; ok {
		delete(s.follows, key)
		return nil
	}
	for i, r := range s.requests {
		if r.from == followerID && r.to == followee.ID {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			return nil
		}
	}
	return ErrNotFollowing
}

func (s *Store) IsFollowing(followerID, followeeID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.follows[followKey{followerID, followeeID}]
	return ok
}

// Followers lists who follows userID, oldest edge first.
func (s *Store) Followers(userID int64) []model.User {
	return s.edges(func(k followKey) (int64, bool) { return k.follower, k.followee == userID })
}

// Following lists whom userID follows, oldest edge first.
func (s *Store) Following(userID int64) []model.User {
	return s.edges(func(k followKey) (int64, bool) { return k.followee, k.follower == userID })
}

func (s *Store) edges(pick func(followKey) (int64, bool)) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type edge struct {
		id int64
		at time.Time
	}
	var found []edge
	for k, at := range s.follows {
		if id, ok := pick(k); ok {
			found = append(found, edge{id, at})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].at.Equal(found[j].at) {
			return found[i].at.Before(found[j].at)
		}
		return found[i].id < found[j].id
	})
	out := make([]model.User, 0, len(found))
	for _, e := range found {
		out = append(out, s.users[e.id].User)
	}
	return out
}

// Requests lists pending requests addressed to userID, oldest first.
func (s *Store) Requests(userID int64) []model.FollowRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.FollowRequest{}
	for _, r := range s.requests {
		if r.to == userID {
			out = append(out, model.FollowRequest{
				Username:    s.users[r.from].Username,
				RequestedAt: model.NewTimestamp(r.requestedAt),
			})
		}
	}
	return out
}

// RespondRequest accepts or rejects the pending request from username to userID.
func (s *Store) RespondRequest(userID int64, username string, action model.FollowAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, err := s.userByUsernameLocked(username)
	if err != nil {
		return err
	}
	for i, r := range s.requests {
		if r.from == from.ID && r.to == userID {
			s.requests = append(s.requests[:i], s.requests[i+1:]...)
			if action == model.FollowAccept {
				s.follows[followKey{from.ID, userID}] = s.now()
			}
			return nil
		}
	}
	return ErrRequestNotFound
}

func (s *Store) acceptAllLocked(userID int64) {
	kept := s.requests[:0]
	for _, r := range s.requests {
		if r.to == userID {
			s.follows[followKey{r.from, userID}] = s.now()
			continue
		}
		kept = append(kept, r)
	}
	s.requests = kept
}

// =============================================================================
// CHATS
// =============================================================================

// Chats lists userID's conversations, most recent activity first.
func (s *Store) Chats(userID int64) []model.ChatSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var recs []*chatRecord
	for _, c := range s.chats {
		if c.members[0] == userID || c.members[1] == userID {
			recs = append(recs, c)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return lastActivity(recs[i]).After(lastActivity(recs[j])) })
	out := make([]model.ChatSummary, 0, len(recs))
	for _, c := range recs {
		sum := model.ChatSummary{ChatID: c.id, Username: s.users[c.other(userID)].Username}
		if n := len(c.messages); n > 0 {
			sum.LastMessage = c.messages[n-1].content
		}
		out = append(out, sum)
	}
	return out
}

func lastActivity(c *chatRecord) time.Time {
	if n := len(c.messages); n > 0 {
		return c.messages[n-1].sentAt
	}
	return time.Time{}
}

// Messages returns the thread between userID and username, oldest first. A
// conversation that was never started is empty, not an error.
func (s *Store) Messages(userID int64, username string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	other, err := s.userByUsernameLocked(username)
	if err != nil {
		return nil, err
	}
	out := []model.Message{}
	c := s.chatBetweenLocked(userID, other.ID)
	if c == nil {
		return out, nil
	}
	for _, m := range c.messages {
		out = append(out, model.Message{
			Content: m.content,
			SentAt:  model.NewTimestamp(m.sentAt),
			Sender:  s.users[m.senderID].Username,
		})
	}
	return out, nil
}

// Send appends a message, creating the conversation on first use.
func (s *Store) Send(userID int64, username, content string) (model.SendMessageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	other, err := s.userByUsernameLocked(username)
	if err != nil {
		return model.SendMessageResponse{}, err
	}
	if other.ID == userID {
		return model.SendMessageResponse{}, ErrCannotMessageSelf
	}
	c := s.chatBetweenLocked(userID, other.ID)
	if c == nil {
		c = &chatRecord{id: s.id(), members: [2]int64{userID, other.ID}, seenAt: map[int64]time.Time{}}
		s.chats[c.id] = c
	}
	msg := messageRecord{senderID: userID, content: strings.TrimSpace(content), sentAt: s.now()}
	c.messages = append(c.messages, msg)
	c.seenAt[userID] = msg.sentAt
	return model.SendMessageResponse{
		ChatID:  c.id,
		Content: msg.content,
		SentAt:  model.NewTimestamp(msg.sentAt),
	}, nil
}

// MarkSeen records that userID has read chatID up to now.
func (s *Store) MarkSeen(userID, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok || (c.members[0] != userID && c.members[1] != userID) {
		return ErrChatNotFound
	}
	c.seenAt[userID] = s.now()
	return nil
}

// Unseen counts messages in chatID that userID has not marked seen.
func (s *Store) Unseen(userID, chatID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[chatID]
	if !ok {
		return 0
	}
	seen := c.seenAt[userID]
	n := 0
	for _, m := range c.messages {
		if m.senderID != userID && m.sentAt.After(seen) {
			n++
		}
	}
	return n
}

func (s *Store) chatBetweenLocked(a, b int64) *chatRecord {
	for _, c := range s.chats {
		if (c.members[0] == a && c.members[1] == b) || (c.members[0] == b && c.members[1] == a) {
			return c
		}
	}
	return nil
}
