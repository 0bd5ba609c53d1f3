// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"

	"github.com/lenscape/lenscape/internal/entities"
	"github.com/lenscape/lenscape/internal/storage"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

// ErrNotFound returned when a referenced user, post or author does not exist.
var ErrNotFound = errors.New("not found")

// ErrSelfFollow returned when a user tries to follow themselves.
var ErrSelfFollow = errors.New("can not follow yourself")

// ErrEmptyComment returned when comment text is blank.
var ErrEmptyComment = errors.New("comment text is empty")

// ErrInvalidLimit returned when a non-positive limit reaches the core.
var ErrInvalidLimit = errors.New("limit must be positive")

// FeedParams bounds a feed page. After is an exclusive keyset cursor, the id
// of the last post of the previous page.
type FeedParams struct {
	Limit uint16
	After *int64
}

// Service assembles viewer-relative feeds and applies social-graph mutations.
type Service interface {
	GetHomeFeed(ctx context.Context, viewer string, p FeedParams) ([]*entities.FeedPost, error)
	GetExploreFeed(ctx context.Context, viewer string, p FeedParams) ([]*entities.FeedPost, error)
	GetProfileFeed(ctx context.Context, author string, p FeedParams) ([]*entities.FeedPost, error)

	GetPost(ctx context.Context, id int64, viewer string) (*entities.PostDetails, error)
	CreatePost(ctx context.Context, p *storage.CreatePostParams) (*entities.Post, error)
	DeletePost(ctx context.Context, id int64, byUser string) error

	Like(ctx context.Context, viewer string, postID int64) (bool, error)
	Unlike(ctx context.Context, viewer string, postID int64) (bool, error)

	AddComment(ctx context.Context, postID int64, author, text string) (*entities.Comment, error)
	GetComments(ctx context.Context, postID int64) ([]*entities.Comment, error)

	Follow(ctx context.Context, viewer, target string) (bool, error)
	Unfollow(ctx context.Context, viewer, target string) (bool, error)
	IsFollowing(ctx context.Context, viewer, target string) (bool, error)
	GetFollowers(ctx context.Context, userID string) ([]*entities.User, error)
	GetFollowing(ctx context.Context, userID string) ([]*entities.User, error)

	GetUserProfile(ctx context.Context, id, viewer string) (*entities.Profile, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
	UpsertUser(ctx context.Context, u *entities.User) (*entities.User, error)
	UpdateProfile(ctx context.Context, id string, p *storage.UpdateProfileParams) (*entities.User, error)
	SearchUsers(ctx context.Context, query string) ([]*entities.User, error)

	CreateStory(ctx context.Context, owner, image string) (*entities.Story, error)
	GetActiveStories(ctx context.Context, viewer string) ([]*entities.Story, error)
	GetUserStories(ctx context.Context, owner string) ([]*entities.Story, error)

	GetNotifications(ctx context.Context, viewer string) ([]*entities.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (bool, error)
}
