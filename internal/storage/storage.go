// Package storage contains a storage interface.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lenscape/lenscape/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// Storage provides methods for interacting with database.
type Storage interface {
	InTx(ctx context.Context, f func(s Storage) error) error

	GetUser(ctx context.Context, id string) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
	UpsertUser(ctx context.Context, u *entities.User) (*entities.User, error)
	UpdateProfile(ctx context.Context, id string, p *UpdateProfileParams) (*entities.User, error)
	SearchUsers(ctx context.Context, query string, limit uint16) ([]*entities.User, error)
	GetUsers(ctx context.Context, id ...string) (map[string]*entities.User, error)
	GetUserCounts(ctx context.Context, id string) (*entities.UserCounts, error)

	CreatePost(ctx context.Context, p *CreatePostParams) (*entities.Post, error)
	GetPost(ctx context.Context, id int64) (*entities.Post, error)
	ListPosts(ctx context.Context, p *ListPostsParams) ([]*entities.Post, error)
	DeletePost(ctx context.Context, id int64, owner string) error

	AddLike(ctx context.Context, owner string, postID int64, timestamp time.Time) (bool, error)
	RemoveLike(ctx context.Context, owner string, postID int64) (bool, error)
	GetLikeCounts(ctx context.Context, postID ...int64) (map[int64]uint32, error)
	GetLikedSet(ctx context.Context, likedBy string, postID ...int64) (map[int64]struct{}, error)

	CreateComment(ctx context.Context, p *CreateCommentParams) (*entities.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error)
	GetCommentCounts(ctx context.Context, postID ...int64) (map[int64]uint32, error)

	Follow(ctx context.Context, follower, followee string, timestamp time.Time) (bool, error)
	Unfollow(ctx context.Context, follower, followee string) (bool, error)
	IsFollowing(ctx context.Context, follower, followee string) (bool, error)
	ListFollowers(ctx context.Context, userID string, limit uint16) ([]*entities.User, error)
	ListFollowing(ctx context.Context, userID string, limit uint16) ([]*entities.User, error)

	CreateStory(ctx context.Context, p *CreateStoryParams) (*entities.Story, error)
	ListFeedStories(ctx context.Context, viewer string, now time.Time) ([]*entities.Story, error)
	ListUserStories(ctx context.Context, owner string, now time.Time) ([]*entities.Story, error)

	CreateNotification(ctx context.Context, p *CreateNotificationParams, dedupWindow time.Duration) (*entities.Notification, bool, error)
	ListNotifications(ctx context.Context, recipient string) ([]*entities.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (bool, error)
}

// UpdateProfileParams ...
// Nil fields are left untouched.
type UpdateProfileParams struct {
	Username  *string
	FirstName *string
	LastName  *string
	Avatar    *string
	Bio       *string
	Website   *string
}

// CreatePostParams ...
type CreatePostParams struct {
	Owner     string
	Image     string
	Caption   string
	Location  string
	CreatedAt time.Time
}

// ListPostsParams selects one of the feed shapes.
//
// FollowedBy returns posts authored by the given user or by authors the user
// follows. ExcludeOwner returns posts by everyone but the given user. Owner
// returns posts of a single author. Exactly one of the three is expected to
// be set.
type ListPostsParams struct {
	FollowedBy   *string
	ExcludeOwner *string
	Owner        *string
	Limit        uint16
	After        *int64
}

// CreateCommentParams ...
type CreateCommentParams struct {
	PostID    int64
	Owner     string
	Text      string
	CreatedAt time.Time
}

// CreateStoryParams ...
type CreateStoryParams struct {
	Owner     string
	Image     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateNotificationParams ...
type CreateNotificationParams struct {
	Recipient  string
	Originator *string
	Type       entities.NotificationType
	PostID     *int64
	Message    string
	CreatedAt  time.Time
}
