package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lenscape/lenscape/internal/entities"
)

const maxLimit = 100
const defaultFeedLimit = 20
const defaultProfileFeedLimit = 50

// Error ...
// swagger:model
type Error struct {
	Error string `json:"error"`
}

// Success reports whether a mutation actually changed state.
type Success struct {
	Success bool `json:"success"`
}

// User ...
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Website   string `json:"website,omitempty"`
	CreatedAt uint64 `json:"createdAt"`
}

// Profile is a user with derived counts and the viewer-relative follow flag.
type Profile struct {
	User
	PostsCount     uint32 `json:"postsCount"`
	FollowersCount uint32 `json:"followersCount"`
	FollowingCount uint32 `json:"followingCount"`
	IsFollowing    bool   `json:"isFollowing"`
}

// Post ...
type Post struct {
	ID            int64  `json:"id"`
	Owner         string `json:"owner"`
	Image         string `json:"image"`
	Caption       string `json:"caption,omitempty"`
	Location      string `json:"location,omitempty"`
	CreatedAt     uint64 `json:"createdAt"`
	Author        *User  `json:"author,omitempty"`
	LikesCount    uint32 `json:"likesCount"`
	CommentsCount uint32 `json:"commentsCount"`
	Liked         bool   `json:"liked"`
}

// FeedResponse ...
// Next is the cursor for the following page, absent on the last one.
type FeedResponse struct {
	Posts []*Post `json:"posts"`
	Next  *int64  `json:"next,omitempty"`
}

// PostDetailsResponse ...
type PostDetailsResponse struct {
	Post
	Comments []*Comment `json:"comments"`
}

// Comment ...
type Comment struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"postId"`
	Owner     string `json:"owner"`
	Text      string `json:"text"`
	CreatedAt uint64 `json:"createdAt"`
	Author    *User  `json:"author,omitempty"`
}

// Story ...
type Story struct {
	ID        int64  `json:"id"`
	Owner     string `json:"owner"`
	Image     string `json:"image"`
	CreatedAt uint64 `json:"createdAt"`
	ExpiresAt uint64 `json:"expiresAt"`
	Author    *User  `json:"author,omitempty"`
}

// Notification ...
type Notification struct {
	ID         int64   `json:"id"`
	Type       string  `json:"type"`
	Message    string  `json:"message"`
	Read       bool    `json:"read"`
	CreatedAt  uint64  `json:"createdAt"`
	Originator *string `json:"originator,omitempty"`
	FromUser   *User   `json:"fromUser,omitempty"`
	Post       *Post   `json:"post,omitempty"`
}

// CreatePostRequest ...
type CreatePostRequest struct {
	UserID   string `json:"userId"`
	Image    string `json:"image"`
	Caption  string `json:"caption"`
	Location string `json:"location"`
}

// CreateCommentRequest ...
type CreateCommentRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// CreateStoryRequest ...
type CreateStoryRequest struct {
	UserID string `json:"userId"`
	Image  string `json:"image"`
}

// ActorRequest carries the acting user for like/follow mutations.
type ActorRequest struct {
	UserID string `json:"userId"`
}

// UpsertUserRequest ...
type UpsertUserRequest struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
	Website   string `json:"website"`
}

// UpdateProfileRequest ...
// Absent fields are left untouched.
type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Avatar    *string `json:"avatar"`
	Bio       *string `json:"bio"`
	Website   *string `json:"website"`
}

func writeOK(w http.ResponseWriter, status int, v interface{}) {
	b, _ := json.Marshal(v)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b) // nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeOK(w, status, Error{Error: message})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	logrus.WithContext(ctx).WithError(err).Error(message)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func toAPIUser(u *entities.User) *User {
	if u == nil {
		return nil
	}

	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Website:   u.Website,
		CreatedAt: uint64(u.CreatedAt.Unix()),
	}
}

func toAPIUsers(uu []*entities.User) []*User {
	out := make([]*User, len(uu))
	for i, v := range uu {
		out[i] = toAPIUser(v)
	}
	return out
}

func toAPIProfile(p *entities.Profile) *Profile {
	return &Profile{
		User:           *toAPIUser(&p.User),
		PostsCount:     p.Counts.Posts,
		FollowersCount: p.Counts.Followers,
		FollowingCount: p.Counts.Following,
		IsFollowing:    p.IsFollowing,
	}
}

func toAPIPost(p *entities.Post) *Post {
	if p == nil {
		return nil
	}

	return &Post{
		ID:        p.ID,
		Owner:     p.Owner,
		Image:     p.Image,
		Caption:   p.Caption,
		Location:  p.Location,
		CreatedAt: uint64(p.CreatedAt.Unix()),
	}
}

func toAPIFeedPost(p *entities.FeedPost) *Post {
	out := toAPIPost(&p.Post)
	out.Author = toAPIUser(p.Author)
	out.LikesCount = p.Likes
	out.CommentsCount = p.Comments
	out.Liked = p.Liked

	return out
}

func newFeedResponse(pp []*entities.FeedPost, limit uint16) FeedResponse {
	out := FeedResponse{
		Posts: make([]*Post, len(pp)),
	}

	for i, v := range pp {
		out.Posts[i] = toAPIFeedPost(v)
	}

	if len(pp) == int(limit) && limit > 0 {
		next := pp[len(pp)-1].ID
		out.Next = &next
	}

	return out
}

func toAPIComment(c *entities.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		Owner:     c.Owner,
		Text:      c.Text,
		CreatedAt: uint64(c.CreatedAt.Unix()),
		Author:    toAPIUser(c.Author),
	}
}

func toAPIStory(s *entities.Story) *Story {
	return &Story{
		ID:        s.ID,
		Owner:     s.Owner,
		Image:     s.Image,
		CreatedAt: uint64(s.CreatedAt.Unix()),
		ExpiresAt: uint64(s.ExpiresAt.Unix()),
		Author:    toAPIUser(s.Author),
	}
}

func toAPINotification(n *entities.Notification) *Notification {
	return &Notification{
		ID:         n.ID,
		Type:       string(n.Type),
		Message:    n.Message,
		Read:       n.Read,
		CreatedAt:  uint64(n.CreatedAt.Unix()),
		Originator: n.Originator,
		FromUser:   toAPIUser(n.FromUser),
		Post:       toAPIPost(n.Post),
	}
}
