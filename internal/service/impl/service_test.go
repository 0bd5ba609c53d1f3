package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenscape/lenscape/internal/entities"
	"github.com/lenscape/lenscape/internal/service"
	storageinterface "github.com/lenscape/lenscape/internal/storage"
	storage "github.com/lenscape/lenscape/internal/storage/mock"
)

var errTest = errors.New("test")

func newSrv(t *testing.T, now time.Time) (srv, *storage.MockStorage) {
	ctrl := gomock.NewController(t)

	s := storage.NewMockStorage(ctrl)

	return srv{
		s:   s,
		now: func() time.Time { return now },
	}, s
}

func expectInTx(s *storage.MockStorage) {
	s.EXPECT().InTx(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f func(s storageinterface.Storage) error) error {
		return f(s)
	})
}

func TestSrv_GetHomeFeed(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	posts := []*entities.Post{
		{ID: 3, Owner: "bob", Image: "b.jpg", CreatedAt: now},
		{ID: 1, Owner: "alice", Image: "a.jpg", CreatedAt: now.Add(-time.Hour)},
	}

	s.EXPECT().GetUser(gomock.Any(), "alice").Return(&entities.User{ID: "alice"}, nil)
	s.EXPECT().ListPosts(gomock.Any(), &storageinterface.ListPostsParams{
		FollowedBy: strPtr("alice"),
		Limit:      20,
	}).Return(posts, nil)
	s.EXPECT().GetLikeCounts(gomock.Any(), int64(3), int64(1)).Return(map[int64]uint32{3: 2}, nil)
	s.EXPECT().GetCommentCounts(gomock.Any(), int64(3), int64(1)).Return(map[int64]uint32{1: 5}, nil)
	s.EXPECT().GetLikedSet(gomock.Any(), "alice", int64(3), int64(1)).Return(map[int64]struct{}{3: {}}, nil)
	s.EXPECT().GetUsers(gomock.Any(), "bob", "alice").Return(map[string]*entities.User{
		"bob":   {ID: "bob", Username: "bob"},
		"alice": {ID: "alice", Username: "alice"},
	}, nil)

	out, err := srv.GetHomeFeed(context.Background(), "alice", service.FeedParams{Limit: 20})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.EqualValues(t, 3, out[0].ID)
	assert.Equal(t, "bob", out[0].Author.ID)
	assert.EqualValues(t, 2, out[0].Likes)
	assert.Zero(t, out[0].Comments)
	assert.True(t, out[0].Liked)

	assert.EqualValues(t, 1, out[1].ID)
	assert.Equal(t, "alice", out[1].Author.ID)
	assert.Zero(t, out[1].Likes)
	assert.EqualValues(t, 5, out[1].Comments)
	assert.False(t, out[1].Liked)
}

func TestSrv_GetHomeFeed_invalidLimit(t *testing.T) {
	srv, _ := newSrv(t, time.Now())

	_, err := srv.GetHomeFeed(context.Background(), "alice", service.FeedParams{})
	require.True(t, errors.Is(err, service.ErrInvalidLimit))
}

func TestSrv_GetHomeFeed_unknownViewer(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, storageinterface.ErrNotFound)

	_, err := srv.GetHomeFeed(context.Background(), "ghost", service.FeedParams{Limit: 20})
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_GetHomeFeed_cancelled(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.EXPECT().GetUser(gomock.Any(), "alice").Return(&entities.User{ID: "alice"}, nil)
	s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return([]*entities.Post{
		{ID: 1, Owner: "bob", CreatedAt: now},
	}, nil)

	s.EXPECT().GetLikeCounts(gomock.Any(), int64(1)).DoAndReturn(func(ctx context.Context, _ ...int64) (map[int64]uint32, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})
	s.EXPECT().GetCommentCounts(gomock.Any(), int64(1)).DoAndReturn(func(ctx context.Context, _ ...int64) (map[int64]uint32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}).AnyTimes()
	s.EXPECT().GetLikedSet(gomock.Any(), "alice", int64(1)).DoAndReturn(func(ctx context.Context, _ string, _ ...int64) (map[int64]struct{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}).AnyTimes()
	s.EXPECT().GetUsers(gomock.Any(), "bob").DoAndReturn(func(ctx context.Context, _ ...string) (map[string]*entities.User, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}).AnyTimes()

	out, err := srv.GetHomeFeed(ctx, "alice", service.FeedParams{Limit: 20})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.Nil(t, out)
}

func TestSrv_GetHomeFeed_staleCursor(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	after := int64(999)

	s.EXPECT().GetUser(gomock.Any(), "alice").Return(&entities.User{ID: "alice"}, nil)
	s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return(nil, storageinterface.ErrNotFound)

	_, err := srv.GetHomeFeed(context.Background(), "alice", service.FeedParams{Limit: 20, After: &after})
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_GetHomeFeed_empty(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().GetUser(gomock.Any(), "alice").Return(&entities.User{ID: "alice"}, nil)
	s.EXPECT().ListPosts(gomock.Any(), gomock.Any()).Return(nil, nil)

	out, err := srv.GetHomeFeed(context.Background(), "alice", service.FeedParams{Limit: 20})
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestSrv_GetExploreFeed(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	after := int64(10)

	s.EXPECT().GetUser(gomock.Any(), "alice").Return(&entities.User{ID: "alice"}, nil)
	s.EXPECT().ListPosts(gomock.Any(), &storageinterface.ListPostsParams{
		ExcludeOwner: strPtr("alice"),
		Limit:        5,
		After:        &after,
	}).Return(nil, nil)

	out, err := srv.GetExploreFeed(context.Background(), "alice", service.FeedParams{Limit: 5, After: &after})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSrv_GetProfileFeed(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	s.EXPECT().GetUser(gomock.Any(), "bob").Return(&entities.User{ID: "bob"}, nil)
	s.EXPECT().ListPosts(gomock.Any(), &storageinterface.ListPostsParams{
		Owner: strPtr("bob"),
		Limit: 50,
	}).Return([]*entities.Post{{ID: 7, Owner: "bob", CreatedAt: now}}, nil)
	s.EXPECT().GetLikeCounts(gomock.Any(), int64(7)).Return(map[int64]uint32{7: 1}, nil)
	s.EXPECT().GetCommentCounts(gomock.Any(), int64(7)).Return(nil, nil)
	// no liked-set lookup without a viewer
	s.EXPECT().GetUsers(gomock.Any(), "bob").Return(map[string]*entities.User{"bob": {ID: "bob"}}, nil)

	out, err := srv.GetProfileFeed(context.Background(), "bob", service.FeedParams{Limit: 50})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.False(t, out[0].Liked)
	assert.EqualValues(t, 1, out[0].Likes)
}

func TestSrv_GetPost(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Owner: "bob", CreatedAt: now}, nil)
	s.EXPECT().GetLikeCounts(gomock.Any(), int64(1)).Return(map[int64]uint32{1: 3}, nil)
	s.EXPECT().GetCommentCounts(gomock.Any(), int64(1)).Return(map[int64]uint32{1: 1}, nil)
	s.EXPECT().GetLikedSet(gomock.Any(), "alice", int64(1)).Return(nil, nil)
	s.EXPECT().GetUsers(gomock.Any(), "bob").Return(map[string]*entities.User{"bob": {ID: "bob"}}, nil)
	s.EXPECT().ListComments(gomock.Any(), int64(1)).Return([]*entities.Comment{
		{ID: 5, PostID: 1, Owner: "alice", Text: "nice"},
	}, nil)

	out, err := srv.GetPost(context.Background(), 1, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 3, out.Likes)
	assert.Len(t, out.CommentList, 1)
	assert.Equal(t, "bob", out.Author.ID)
}

func TestSrv_GetPost_notFound(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(nil, storageinterface.ErrNotFound)

	_, err := srv.GetPost(context.Background(), 1, "alice")
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_CreatePost(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	p := &storageinterface.CreatePostParams{Owner: "bob", Image: "img"}

	s.EXPECT().CreatePost(gomock.Any(), p).DoAndReturn(func(_ context.Context, p *storageinterface.CreatePostParams) (*entities.Post, error) {
		require.Equal(t, now, p.CreatedAt)
		return &entities.Post{ID: 1, Owner: p.Owner, Image: p.Image, CreatedAt: p.CreatedAt}, nil
	})

	post, err := srv.CreatePost(context.Background(), p)
	require.NoError(t, err)
	require.EqualValues(t, 1, post.ID)

	s.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(nil, storageinterface.ErrNotFound)
	_, err = srv.CreatePost(context.Background(), &storageinterface.CreatePostParams{Owner: "ghost"})
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_DeletePost(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().DeletePost(gomock.Any(), int64(1), "bob").Return(nil)
	require.NoError(t, srv.DeletePost(context.Background(), 1, "bob"))

	s.EXPECT().DeletePost(gomock.Any(), int64(1), "alice").Return(storageinterface.ErrNotFound)
	require.True(t, errors.Is(srv.DeletePost(context.Background(), 1, "alice"), service.ErrNotFound))
}

func TestSrv_Like(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Owner: "bob"}, nil)
	s.EXPECT().AddLike(gomock.Any(), "alice", int64(1), now).Return(true, nil)
	s.EXPECT().CreateNotification(gomock.Any(), &storageinterface.CreateNotificationParams{
		Recipient:  "bob",
		Originator: strPtr("alice"),
		Type:       entities.LikeNotification,
		PostID:     int64Ptr(1),
		Message:    "liked your post",
		CreatedAt:  now,
	}, notificationDedupWindow).Return(&entities.Notification{ID: 1}, true, nil)

	created, err := srv.Like(context.Background(), "alice", 1)
	require.NoError(t, err)
	require.True(t, created)
}

func TestSrv_Like_duplicate(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Owner: "bob"}, nil)
	s.EXPECT().AddLike(gomock.Any(), "alice", int64(1), now).Return(false, nil)
	// no notification for a repeated like

	created, err := srv.Like(context.Background(), "alice", 1)
	require.NoError(t, err)
	require.False(t, created)
}

func TestSrv_Like_ownPost(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Owner: "bob"}, nil)
	s.EXPECT().AddLike(gomock.Any(), "bob", int64(1), now).Return(true, nil)
	// no notification to yourself

	created, err := srv.Like(context.Background(), "bob", 1)
	require.NoError(t, err)
	require.True(t, created)
}

func TestSrv_Like_unknownPost(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(nil, storageinterface.ErrNotFound)

	_, err := srv.Like(context.Background(), "alice", 1)
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_Unlike(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().RemoveLike(gomock.Any(), "alice", int64(1)).Return(true, nil)
	removed, err := srv.Unlike(context.Background(), "alice", 1)
	require.NoError(t, err)
	require.True(t, removed)

	s.EXPECT().RemoveLike(gomock.Any(), "alice", int64(1)).Return(false, nil)
	removed, err = srv.Unlike(context.Background(), "alice", 1)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestSrv_AddComment(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Owner: "bob"}, nil)
	s.EXPECT().CreateComment(gomock.Any(), &storageinterface.CreateCommentParams{
		PostID:    1,
		Owner:     "alice",
		Text:      "nice shot",
		CreatedAt: now,
	}).Return(&entities.Comment{ID: 5, PostID: 1, Owner: "alice", Text: "nice shot"}, nil)
	s.EXPECT().CreateNotification(gomock.Any(), &storageinterface.CreateNotificationParams{
		Recipient:  "bob",
		Originator: strPtr("alice"),
		Type:       entities.CommentNotification,
		PostID:     int64Ptr(1),
		Message:    "commented on your post",
		CreatedAt:  now,
	}, time.Duration(0)).Return(&entities.Notification{ID: 1}, true, nil)

	comment, err := srv.AddComment(context.Background(), 1, "alice", "nice shot")
	require.NoError(t, err)
	require.EqualValues(t, 5, comment.ID)
}

func TestSrv_AddComment_empty(t *testing.T) {
	srv, _ := newSrv(t, time.Now())

	_, err := srv.AddComment(context.Background(), 1, "alice", "   ")
	require.True(t, errors.Is(err, service.ErrEmptyComment))
}

func TestSrv_AddComment_ownPost(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().GetPost(gomock.Any(), int64(1)).Return(&entities.Post{ID: 1, Owner: "bob"}, nil)
	s.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(&entities.Comment{ID: 5}, nil)
	// commenting on your own post produces no notification

	_, err := srv.AddComment(context.Background(), 1, "bob", "mine")
	require.NoError(t, err)
}

func TestSrv_Follow(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().Follow(gomock.Any(), "alice", "bob", now).Return(true, nil)
	s.EXPECT().CreateNotification(gomock.Any(), &storageinterface.CreateNotificationParams{
		Recipient:  "bob",
		Originator: strPtr("alice"),
		Type:       entities.FollowNotification,
		Message:    "started following you",
		CreatedAt:  now,
	}, notificationDedupWindow).Return(&entities.Notification{ID: 1}, true, nil)

	created, err := srv.Follow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.True(t, created)
}

func TestSrv_Follow_self(t *testing.T) {
	srv, _ := newSrv(t, time.Now())

	_, err := srv.Follow(context.Background(), "alice", "alice")
	require.True(t, errors.Is(err, service.ErrSelfFollow))
}

func TestSrv_Follow_duplicate(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().Follow(gomock.Any(), "alice", "bob", now).Return(false, nil)

	created, err := srv.Follow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.False(t, created)
}

func TestSrv_Follow_unknownTarget(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	expectInTx(s)
	s.EXPECT().Follow(gomock.Any(), "alice", "ghost", now).Return(false, storageinterface.ErrNotFound)

	_, err := srv.Follow(context.Background(), "alice", "ghost")
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_Unfollow(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().Unfollow(gomock.Any(), "alice", "bob").Return(true, nil)
	removed, err := srv.Unfollow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.True(t, removed)

	s.EXPECT().Unfollow(gomock.Any(), "alice", "bob").Return(false, nil)
	removed, err = srv.Unfollow(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestSrv_GetUserProfile(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().GetUser(gomock.Any(), "bob").Return(&entities.User{ID: "bob", Username: "bob"}, nil)
	s.EXPECT().GetUserCounts(gomock.Any(), "bob").Return(&entities.UserCounts{Posts: 3, Followers: 2, Following: 1}, nil)
	s.EXPECT().IsFollowing(gomock.Any(), "alice", "bob").Return(true, nil)

	p, err := srv.GetUserProfile(context.Background(), "bob", "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 3, p.Counts.Posts)
	assert.True(t, p.IsFollowing)
}

func TestSrv_GetUserProfile_own(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().GetUser(gomock.Any(), "bob").Return(&entities.User{ID: "bob"}, nil)
	s.EXPECT().GetUserCounts(gomock.Any(), "bob").Return(&entities.UserCounts{}, nil)
	// no follow check against yourself

	p, err := srv.GetUserProfile(context.Background(), "bob", "bob")
	require.NoError(t, err)
	assert.False(t, p.IsFollowing)
}

func TestSrv_GetUserProfile_notFound(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, storageinterface.ErrNotFound)

	_, err := srv.GetUserProfile(context.Background(), "ghost", "alice")
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_GetUserByUsername(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(&entities.User{ID: "u-bob", Username: "bob"}, nil)
	u, err := srv.GetUserByUsername(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, "u-bob", u.ID)

	s.EXPECT().GetUserByUsername(gomock.Any(), "ghost").Return(nil, storageinterface.ErrNotFound)
	_, err = srv.GetUserByUsername(context.Background(), "ghost")
	require.True(t, errors.Is(err, service.ErrNotFound))
}

func TestSrv_CreateStory(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	s.EXPECT().CreateStory(gomock.Any(), &storageinterface.CreateStoryParams{
		Owner:     "bob",
		Image:     "story.jpg",
		CreatedAt: now,
		ExpiresAt: now.Add(entities.StoryTTL),
	}).Return(&entities.Story{ID: 1, Owner: "bob"}, nil)

	story, err := srv.CreateStory(context.Background(), "bob", "story.jpg")
	require.NoError(t, err)
	require.EqualValues(t, 1, story.ID)
}

func TestSrv_GetActiveStories(t *testing.T) {
	now := time.Now().UTC()
	srv, s := newSrv(t, now)

	s.EXPECT().ListFeedStories(gomock.Any(), "alice", now).Return([]*entities.Story{{ID: 1}}, nil)

	stories, err := srv.GetActiveStories(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, stories, 1)

	s.EXPECT().ListFeedStories(gomock.Any(), "alice", now).Return(nil, errTest)
	_, err = srv.GetActiveStories(context.Background(), "alice")
	require.Error(t, err)
}

func TestSrv_MarkNotificationRead(t *testing.T) {
	srv, s := newSrv(t, time.Now())

	s.EXPECT().MarkNotificationRead(gomock.Any(), int64(1)).Return(true, nil)
	marked, err := srv.MarkNotificationRead(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, marked)

	s.EXPECT().MarkNotificationRead(gomock.Any(), int64(2)).Return(false, nil)
	marked, err = srv.MarkNotificationRead(context.Background(), 2)
	require.NoError(t, err)
	require.False(t, marked)
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
