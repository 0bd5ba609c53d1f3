// Package entities contains main entities of service.
package entities

import (
	"time"
)

// NotificationType is a reason a notification was recorded.
type NotificationType string

const (
	// LikeNotification ...
	LikeNotification NotificationType = "like"
	// CommentNotification ...
	CommentNotification NotificationType = "comment"
	// FollowNotification ...
	FollowNotification NotificationType = "follow"
)

// StoryTTL is how long a story stays active after creation.
const StoryTTL = 24 * time.Hour

// User ...
type User struct {
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string
	Avatar    string
	Bio       string
	Website   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCounts are cardinalities computed from the post and follow relations.
// They are never stored on the profile row.
type UserCounts struct {
	Posts     uint32
	Followers uint32
	Following uint32
}

// Profile is a user with counts and the viewer-relative follow flag.
type Profile struct {
	User
	Counts      UserCounts
	IsFollowing bool
}

// Post ...
type Post struct {
	ID        int64
	Owner     string
	Image     string
	Caption   string
	Location  string
	CreatedAt time.Time
}

// FeedPost is a post enriched with derived counters and viewer-relative flags.
type FeedPost struct {
	Post
	Author   *User
	Likes    uint32
	Comments uint32
	Liked    bool
}

// PostDetails is a single post with its full comment list.
type PostDetails struct {
	FeedPost
	CommentList []*Comment
}

// Comment ...
type Comment struct {
	ID        int64
	PostID    int64
	Owner     string
	Text      string
	CreatedAt time.Time

	Author *User
}

// Follow ...
type Follow struct {
	Follower  string
	Followee  string
	CreatedAt time.Time
}

// Story is active while ExpiresAt is in the future; expired rows are
// filtered by queries, never deleted.
type Story struct {
	ID        int64
	Owner     string
	Image     string
	CreatedAt time.Time
	ExpiresAt time.Time

	Author *User
}

// Notification ...
type Notification struct {
	ID         int64
	Recipient  string
	Originator *string
	Type       NotificationType
	PostID     *int64
	Message    string
	Read       bool
	CreatedAt  time.Time

	FromUser *User
	Post     *Post
}
