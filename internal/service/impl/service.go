// Package impl is implementation of service interface.
package impl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lenscape/lenscape/internal/entities"
	"github.com/lenscape/lenscape/internal/service"
	"github.com/lenscape/lenscape/internal/storage"
)

// notificationDedupWindow suppresses repeated like/follow notifications for
// the same (recipient, originator, post) inside the window. A like/unlike/like
// cycle produces a single row.
const notificationDedupWindow = 15 * time.Minute

const searchLimit = 20
const followListLimit = 100

type srv struct {
	s   storage.Storage
	now func() time.Time
}

// New creates new instance of service.
func New(s storage.Storage) service.Service {
	return srv{
		s:   s,
		now: time.Now,
	}
}

func (s srv) GetHomeFeed(ctx context.Context, viewer string, p service.FeedParams) ([]*entities.FeedPost, error) {
	if p.Limit == 0 {
		return nil, service.ErrInvalidLimit
	}

	if err := s.checkUser(ctx, viewer); err != nil {
		return nil, err
	}

	posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{
		FollowedBy: &viewer,
		Limit:      p.Limit,
		After:      p.After,
	})
	if err != nil {
		return nil, wrapErr("failed to list posts", err)
	}

	return s.enrich(ctx, posts, viewer)
}

func (s srv) GetExploreFeed(ctx context.Context, viewer string, p service.FeedParams) ([]*entities.FeedPost, error) {
	if p.Limit == 0 {
		return nil, service.ErrInvalidLimit
	}

	if err := s.checkUser(ctx, viewer); err != nil {
		return nil, err
	}

	posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{
		ExcludeOwner: &viewer,
		Limit:        p.Limit,
		After:        p.After,
	})
	if err != nil {
		return nil, wrapErr("failed to list posts", err)
	}

	return s.enrich(ctx, posts, viewer)
}

func (s srv) GetProfileFeed(ctx context.Context, author string, p service.FeedParams) ([]*entities.FeedPost, error) {
	if p.Limit == 0 {
		return nil, service.ErrInvalidLimit
	}

	if err := s.checkUser(ctx, author); err != nil {
		return nil, err
	}

	posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{
		Owner: &author,
		Limit: p.Limit,
		After: p.After,
	})
	if err != nil {
		return nil, wrapErr("failed to list posts", err)
	}

	// no viewer here, so no liked flag to compute
	return s.enrich(ctx, posts, "")
}

// enrich attaches derived counters, authors and the viewer's liked flag to
// raw post rows. The per-metric lookups are independent and run concurrently;
// the result preserves the order of posts. Passing an empty viewer skips the
// liked-set lookup.
func (s srv) enrich(ctx context.Context, posts []*entities.Post, viewer string) ([]*entities.FeedPost, error) {
	if len(posts) == 0 {
		return []*entities.FeedPost{}, nil
	}

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var (
		likes    map[int64]uint32
		comments map[int64]uint32
		liked    map[int64]struct{}
		authors  map[string]*entities.User
	)

	gr, ctx := errgroup.WithContext(ctx)

	gr.Go(func() error {
		var err error
		if likes, err = s.s.GetLikeCounts(ctx, ids...); err != nil {
			return fmt.Errorf("failed to get like counts: %w", err)
		}
		return nil
	})

	gr.Go(func() error {
		var err error
		if comments, err = s.s.GetCommentCounts(ctx, ids...); err != nil {
			return fmt.Errorf("failed to get comment counts: %w", err)
		}
		return nil
	})

	if viewer != "" {
		gr.Go(func() error {
			var err error
			if liked, err = s.s.GetLikedSet(ctx, viewer, ids...); err != nil {
				return fmt.Errorf("failed to get liked set: %w", err)
			}
			return nil
		})
	}

	gr.Go(func() error {
		var err error
		if authors, err = s.s.GetUsers(ctx, ownersOf(posts)...); err != nil {
			return fmt.Errorf("failed to get authors: %w", err)
		}
		return nil
	})

	if err := gr.Wait(); err != nil {
		return nil, err
	}

	out := make([]*entities.FeedPost, len(posts))
	for i, p := range posts {
		_, isLiked := liked[p.ID]
		out[i] = &entities.FeedPost{
			Post:     *p,
			Author:   authors[p.Owner],
			Likes:    likes[p.ID],
			Comments: comments[p.ID],
			Liked:    isLiked,
		}
	}

	return out, nil
}

func (s srv) GetPost(ctx context.Context, id int64, viewer string) (*entities.PostDetails, error) {
	p, err := s.s.GetPost(ctx, id)
	if err != nil {
		return nil, wrapErr("failed to get post", err)
	}

	enriched, err := s.enrich(ctx, []*entities.Post{p}, viewer)
	if err != nil {
		return nil, err
	}

	comments, err := s.s.ListComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return &entities.PostDetails{
		FeedPost:    *enriched[0],
		CommentList: comments,
	}, nil
}

func (s srv) CreatePost(ctx context.Context, p *storage.CreatePostParams) (*entities.Post, error) {
	p.CreatedAt = s.now()

	post, err := s.s.CreatePost(ctx, p)
	if err != nil {
		return nil, wrapErr("failed to create post", err)
	}

	return post, nil
}

func (s srv) DeletePost(ctx context.Context, id int64, byUser string) error {
	if err := s.s.DeletePost(ctx, id, byUser); err != nil {
		return wrapErr("failed to delete post", err)
	}

	return nil
}

func (s srv) Like(ctx context.Context, viewer string, postID int64) (bool, error) {
	var created bool

	err := s.s.InTx(ctx, func(tx storage.Storage) error {
		post, err := tx.GetPost(ctx, postID)
		if err != nil {
			return fmt.Errorf("failed to get post: %w", err)
		}

		created, err = tx.AddLike(ctx, viewer, postID, s.now())
		if err != nil {
			return fmt.Errorf("failed to add like: %w", err)
		}

		if !created || post.Owner == viewer {
			return nil
		}

		if _, _, err := tx.CreateNotification(ctx, &storage.CreateNotificationParams{
			Recipient:  post.Owner,
			Originator: &viewer,
			Type:       entities.LikeNotification,
			PostID:     &postID,
			Message:    "liked your post",
			CreatedAt:  s.now(),
		}, notificationDedupWindow); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, wrapErr("like failed", err)
	}

	return created, nil
}

func (s srv) Unlike(ctx context.Context, viewer string, postID int64) (bool, error) {
	removed, err := s.s.RemoveLike(ctx, viewer, postID)
	if err != nil {
		return false, wrapErr("failed to remove like", err)
	}

	return removed, nil
}

func (s srv) AddComment(ctx context.Context, postID int64, author, text string) (*entities.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, service.ErrEmptyComment
	}

	var comment *entities.Comment

	err := s.s.InTx(ctx, func(tx storage.Storage) error {
		post, err := tx.GetPost(ctx, postID)
		if err != nil {
			return fmt.Errorf("failed to get post: %w", err)
		}

		comment, err = tx.CreateComment(ctx, &storage.CreateCommentParams{
			PostID:    postID,
			Owner:     author,
			Text:      text,
			CreatedAt: s.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		if post.Owner == author {
			return nil
		}

		// every comment is distinct content, so no dedup window here
		if _, _, err := tx.CreateNotification(ctx, &storage.CreateNotificationParams{
			Recipient:  post.Owner,
			Originator: &author,
			Type:       entities.CommentNotification,
			PostID:     &postID,
			Message:    "commented on your post",
			CreatedAt:  s.now(),
		}, 0); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, wrapErr("add comment failed", err)
	}

	return comment, nil
}

func (s srv) GetComments(ctx context.Context, postID int64) ([]*entities.Comment, error) {
	comments, err := s.s.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

func (s srv) Follow(ctx context.Context, viewer, target string) (bool, error) {
	if viewer == target {
		return false, service.ErrSelfFollow
	}

	var created bool

	err := s.s.InTx(ctx, func(tx storage.Storage) error {
		var err error

		created, err = tx.Follow(ctx, viewer, target, s.now())
		if err != nil {
			return fmt.Errorf("failed to follow: %w", err)
		}

		if !created {
			return nil
		}

		if _, _, err := tx.CreateNotification(ctx, &storage.CreateNotificationParams{
			Recipient:  target,
			Originator: &viewer,
			Type:       entities.FollowNotification,
			Message:    "started following you",
			CreatedAt:  s.now(),
		}, notificationDedupWindow); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, wrapErr("follow failed", err)
	}

	return created, nil
}

func (s srv) Unfollow(ctx context.Context, viewer, target string) (bool, error) {
	removed, err := s.s.Unfollow(ctx, viewer, target)
	if err != nil {
		return false, wrapErr("failed to unfollow", err)
	}

	return removed, nil
}

func (s srv) IsFollowing(ctx context.Context, viewer, target string) (bool, error) {
	following, err := s.s.IsFollowing(ctx, viewer, target)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}

	return following, nil
}

func (s srv) GetFollowers(ctx context.Context, userID string) ([]*entities.User, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	followers, err := s.s.ListFollowers(ctx, userID, followListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}

	return followers, nil
}

func (s srv) GetFollowing(ctx context.Context, userID string) ([]*entities.User, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	following, err := s.s.ListFollowing(ctx, userID, followListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}

	return following, nil
}

func (s srv) GetUserProfile(ctx context.Context, id, viewer string) (*entities.Profile, error) {
	user, err := s.s.GetUser(ctx, id)
	if err != nil {
		return nil, wrapErr("failed to get user", err)
	}

	var (
		counts    *entities.UserCounts
		following bool
	)

	gr, ctx := errgroup.WithContext(ctx)

	gr.Go(func() error {
		var err error
		if counts, err = s.s.GetUserCounts(ctx, id); err != nil {
			return fmt.Errorf("failed to get user counts: %w", err)
		}
		return nil
	})

	if viewer != "" && viewer != id {
		gr.Go(func() error {
			var err error
			if following, err = s.s.IsFollowing(ctx, viewer, id); err != nil {
				return fmt.Errorf("failed to check follow: %w", err)
			}
			return nil
		})
	}

	if err := gr.Wait(); err != nil {
		return nil, err
	}

	return &entities.Profile{
		User:        *user,
		Counts:      *counts,
		IsFollowing: following,
	}, nil
}

func (s srv) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	user, err := s.s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, wrapErr("failed to get user", err)
	}

	return user, nil
}

func (s srv) UpsertUser(ctx context.Context, u *entities.User) (*entities.User, error) {
	u.CreatedAt = s.now()

	user, err := s.s.UpsertUser(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

func (s srv) UpdateProfile(ctx context.Context, id string, p *storage.UpdateProfileParams) (*entities.User, error) {
	user, err := s.s.UpdateProfile(ctx, id, p)
	if err != nil {
		return nil, wrapErr("failed to update profile", err)
	}

	return user, nil
}

func (s srv) SearchUsers(ctx context.Context, query string) ([]*entities.User, error) {
	users, err := s.s.SearchUsers(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

func (s srv) CreateStory(ctx context.Context, owner, image string) (*entities.Story, error) {
	now := s.now()

	story, err := s.s.CreateStory(ctx, &storage.CreateStoryParams{
		Owner:     owner,
		Image:     image,
		CreatedAt: now,
		ExpiresAt: now.Add(entities.StoryTTL),
	})
	if err != nil {
		return nil, wrapErr("failed to create story", err)
	}

	return story, nil
}

func (s srv) GetActiveStories(ctx context.Context, viewer string) ([]*entities.Story, error) {
	stories, err := s.s.ListFeedStories(ctx, viewer, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	return stories, nil
}

func (s srv) GetUserStories(ctx context.Context, owner string) ([]*entities.Story, error) {
	stories, err := s.s.ListUserStories(ctx, owner, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	return stories, nil
}

func (s srv) GetNotifications(ctx context.Context, viewer string) ([]*entities.Notification, error) {
	notifications, err := s.s.ListNotifications(ctx, viewer)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

func (s srv) MarkNotificationRead(ctx context.Context, id int64) (bool, error) {
	// the update touches the row whether or not it is already read, so
	// repeated calls keep returning true; false means the id is unknown
	marked, err := s.s.MarkNotificationRead(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification: %w", err)
	}

	return marked, nil
}

// checkUser fails fast before any feed query is issued.
func (s srv) checkUser(ctx context.Context, id string) error {
	if _, err := s.s.GetUser(ctx, id); err != nil {
		return wrapErr("failed to get user", err)
	}

	return nil
}

func ownersOf(posts []*entities.Post) []string {
	out := make([]string, 0, len(posts))
	m := make(map[string]struct{}, len(posts))

	for _, p := range posts {
		if _, ok := m[p.Owner]; !ok {
			m[p.Owner] = struct{}{}
			out = append(out, p.Owner)
		}
	}

	return out
}

func wrapErr(msg string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return service.ErrNotFound
	}

	return fmt.Errorf("%s: %w", msg, err)
}
