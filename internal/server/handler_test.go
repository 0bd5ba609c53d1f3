package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenscape/lenscape/internal/entities"
	"github.com/lenscape/lenscape/internal/service"
	"github.com/lenscape/lenscape/internal/service/mock"
)

func newTestServer(t *testing.T) (server, *mock.MockService) {
	ctrl := gomock.NewController(t)

	svc := mock.NewMockService(ctrl)

	return server{s: svc}, svc
}

func Test_getHomeFeed(t *testing.T) {
	timestamp := time.Unix(100, 0)

	r, err := http.NewRequest(http.MethodGet, "/v1/feed/home?viewerId=alice&limit=2&after=10", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetHomeFeed(gomock.Any(), "alice", gomock.Any()).Do(func(_ context.Context, _ string, p service.FeedParams) {
		assert.EqualValues(t, 2, p.Limit)
		assert.EqualValues(t, 10, *p.After)
	}).Return([]*entities.FeedPost{
		{
			Post:     entities.Post{ID: 9, Owner: "bob", Image: "b.jpg", Caption: "sunset", CreatedAt: timestamp},
			Author:   &entities.User{ID: "bob", Username: "bob", CreatedAt: timestamp},
			Likes:    3,
			Comments: 1,
			Liked:    true,
		},
		{
			Post:   entities.Post{ID: 7, Owner: "alice", Image: "a.jpg", CreatedAt: timestamp},
			Author: &entities.User{ID: "alice", Username: "alice", CreatedAt: timestamp},
		},
	}, nil)

	router := chi.NewRouter()
	router.Get("/v1/feed/home", srv.getHomeFeed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"posts": [
		{
			"id": 9,
			"owner": "bob",
			"image": "b.jpg",
			"caption": "sunset",
			"createdAt": 100,
			"author": {"id": "bob", "username": "bob", "createdAt": 100},
			"likesCount": 3,
			"commentsCount": 1,
			"liked": true
		},
		{
			"id": 7,
			"owner": "alice",
			"image": "a.jpg",
			"createdAt": 100,
			"author": {"id": "alice", "username": "alice", "createdAt": 100},
			"likesCount": 0,
			"commentsCount": 0,
			"liked": false
		}
	],
	"next": 7
}
	`, w.Body.String())
}

func Test_getHomeFeed_lastPage(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/feed/home?viewerId=alice&limit=5", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetHomeFeed(gomock.Any(), "alice", gomock.Any()).Return([]*entities.FeedPost{
		{Post: entities.Post{ID: 1, Owner: "bob", Image: "b.jpg"}},
	}, nil)

	router := chi.NewRouter()
	router.Get("/v1/feed/home", srv.getHomeFeed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	// fewer posts than the limit, so no next cursor
	assert.NotContains(t, w.Body.String(), `"next"`)
}

func Test_getHomeFeed_badRequest(t *testing.T) {
	tt := []struct {
		name  string
		query string
	}{
		{name: "missing viewer", query: "limit=10"},
		{name: "zero limit", query: "viewerId=alice&limit=0"},
		{name: "limit too big", query: "viewerId=alice&limit=101"},
		{name: "bad after", query: "viewerId=alice&after=abc"},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/v1/feed/home?"+tc.query, nil)
			require.NoError(t, err)

			srv, _ := newTestServer(t)

			router := chi.NewRouter()
			router.Get("/v1/feed/home", srv.getHomeFeed)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func Test_getHomeFeed_unknownViewer(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/feed/home?viewerId=ghost", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetHomeFeed(gomock.Any(), "ghost", gomock.Any()).Return(nil, service.ErrNotFound)

	router := chi.NewRouter()
	router.Get("/v1/feed/home", srv.getHomeFeed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "not found"}`, w.Body.String())
}

func Test_getExploreFeed(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/feed/explore?viewerId=alice", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetExploreFeed(gomock.Any(), "alice", gomock.Any()).Do(func(_ context.Context, _ string, p service.FeedParams) {
		assert.EqualValues(t, defaultFeedLimit, p.Limit)
		assert.Nil(t, p.After)
	}).Return([]*entities.FeedPost{}, nil)

	router := chi.NewRouter()
	router.Get("/v1/feed/explore", srv.getExploreFeed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts": []}`, w.Body.String())
}

func Test_getProfileFeed(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/users/bob/posts", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetProfileFeed(gomock.Any(), "bob", gomock.Any()).Do(func(_ context.Context, _ string, p service.FeedParams) {
		assert.EqualValues(t, defaultProfileFeedLimit, p.Limit)
	}).Return([]*entities.FeedPost{}, nil)

	router := chi.NewRouter()
	router.Get("/v1/users/{id}/posts", srv.getProfileFeed)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func Test_getPost(t *testing.T) {
	timestamp := time.Unix(200, 0)

	r, err := http.NewRequest(http.MethodGet, "/v1/posts/5?viewerId=alice", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetPost(gomock.Any(), int64(5), "alice").Return(&entities.PostDetails{
		FeedPost: entities.FeedPost{
			Post:   entities.Post{ID: 5, Owner: "bob", Image: "b.jpg", CreatedAt: timestamp},
			Author: &entities.User{ID: "bob", Username: "bob", CreatedAt: timestamp},
			Likes:  1,
			Liked:  true,
		},
		CommentList: []*entities.Comment{
			{
				ID: 3, PostID: 5, Owner: "alice", Text: "nice", CreatedAt: timestamp,
				Author: &entities.User{ID: "alice", Username: "alice", CreatedAt: timestamp},
			},
		},
	}, nil)

	router := chi.NewRouter()
	router.Get("/v1/posts/{id}", srv.getPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"id": 5,
	"owner": "bob",
	"image": "b.jpg",
	"createdAt": 200,
	"author": {"id": "bob", "username": "bob", "createdAt": 200},
	"likesCount": 1,
	"commentsCount": 0,
	"liked": true,
	"comments": [
		{
			"id": 3,
			"postId": 5,
			"owner": "alice",
			"text": "nice",
			"createdAt": 200,
			"author": {"id": "alice", "username": "alice", "createdAt": 200}
		}
	]
}
	`, w.Body.String())
}

func Test_getPost_badID(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/posts/abc", nil)
	require.NoError(t, err)

	srv, _ := newTestServer(t)

	router := chi.NewRouter()
	router.Get("/v1/posts/{id}", srv.getPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_createPost(t *testing.T) {
	body := `{"userId": "bob", "image": "b.jpg", "caption": "hi", "location": "oslo"}`

	r, err := http.NewRequest(http.MethodPost, "/v1/posts", bytes.NewBufferString(body))
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().CreatePost(gomock.Any(), gomock.Any()).Return(&entities.Post{
		ID: 1, Owner: "bob", Image: "b.jpg", Caption: "hi", Location: "oslo", CreatedAt: time.Unix(100, 0),
	}, nil)

	router := chi.NewRouter()
	router.Post("/v1/posts", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `
{
	"id": 1,
	"owner": "bob",
	"image": "b.jpg",
	"caption": "hi",
	"location": "oslo",
	"createdAt": 100,
	"likesCount": 0,
	"commentsCount": 0,
	"liked": false
}
	`, w.Body.String())
}

func Test_createPost_missingImage(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/posts", bytes.NewBufferString(`{"userId": "bob"}`))
	require.NoError(t, err)

	srv, _ := newTestServer(t)

	router := chi.NewRouter()
	router.Post("/v1/posts", srv.createPost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_likePost(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/posts/5/likes", bytes.NewBufferString(`{"userId": "alice"}`))
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().Like(gomock.Any(), "alice", int64(5)).Return(true, nil)

	router := chi.NewRouter()
	router.Post("/v1/posts/{id}/likes", srv.likePost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
}

func Test_likePost_missingActor(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/posts/5/likes", bytes.NewBufferString(`{}`))
	require.NoError(t, err)

	srv, _ := newTestServer(t)

	router := chi.NewRouter()
	router.Post("/v1/posts/{id}/likes", srv.likePost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_unlikePost(t *testing.T) {
	r, err := http.NewRequest(http.MethodDelete, "/v1/posts/5/likes?viewerId=alice", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().Unlike(gomock.Any(), "alice", int64(5)).Return(false, nil)

	router := chi.NewRouter()
	router.Delete("/v1/posts/{id}/likes", srv.unlikePost)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": false}`, w.Body.String())
}

func Test_addComment_empty(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/posts/5/comments", bytes.NewBufferString(`{"userId": "alice", "text": " "}`))
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().AddComment(gomock.Any(), int64(5), "alice", " ").Return(nil, service.ErrEmptyComment)

	router := chi.NewRouter()
	router.Post("/v1/posts/{id}/comments", srv.addComment)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_follow(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/users/bob/followers", bytes.NewBufferString(`{"userId": "alice"}`))
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().Follow(gomock.Any(), "alice", "bob").Return(true, nil)

	router := chi.NewRouter()
	router.Post("/v1/users/{id}/followers", srv.follow)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
}

func Test_follow_self(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/users/alice/followers", bytes.NewBufferString(`{"userId": "alice"}`))
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().Follow(gomock.Any(), "alice", "alice").Return(false, service.ErrSelfFollow)

	router := chi.NewRouter()
	router.Post("/v1/users/{id}/followers", srv.follow)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func Test_getUserProfile(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/users/bob?viewerId=alice", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetUserProfile(gomock.Any(), "bob", "alice").Return(&entities.Profile{
		User: entities.User{
			ID: "bob", Username: "bob", Bio: "hi", CreatedAt: time.Unix(300, 0),
		},
		Counts:      entities.UserCounts{Posts: 4, Followers: 2, Following: 7},
		IsFollowing: true,
	}, nil)

	router := chi.NewRouter()
	router.Get("/v1/users/{id}", srv.getUserProfile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
{
	"id": "bob",
	"username": "bob",
	"bio": "hi",
	"createdAt": 300,
	"postsCount": 4,
	"followersCount": 2,
	"followingCount": 7,
	"isFollowing": true
}
	`, w.Body.String())
}

func Test_searchUsers_missingQuery(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/users", nil)
	require.NoError(t, err)

	srv, _ := newTestServer(t)

	router := chi.NewRouter()
	router.Get("/v1/users", srv.searchUsers)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_searchUsers_byUsername(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/users?username=bob", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetUserByUsername(gomock.Any(), "bob").Return(&entities.User{
		ID: "u-bob", Username: "bob", CreatedAt: time.Unix(100, 0),
	}, nil)

	router := chi.NewRouter()
	router.Get("/v1/users", srv.searchUsers)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": "u-bob", "username": "bob", "createdAt": 100}`, w.Body.String())
}

func Test_createStory(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/stories", bytes.NewBufferString(`{"userId": "bob", "image": "s.jpg"}`))
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().CreateStory(gomock.Any(), "bob", "s.jpg").Return(&entities.Story{
		ID: 1, Owner: "bob", Image: "s.jpg",
		CreatedAt: time.Unix(100, 0), ExpiresAt: time.Unix(100, 0).Add(entities.StoryTTL),
	}, nil)

	router := chi.NewRouter()
	router.Post("/v1/stories", srv.createStory)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `
{
	"id": 1,
	"owner": "bob",
	"image": "s.jpg",
	"createdAt": 100,
	"expiresAt": 86500
}
	`, w.Body.String())
}

func Test_listNotifications(t *testing.T) {
	originator := "alice"
	r, err := http.NewRequest(http.MethodGet, "/v1/notifications?viewerId=bob", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetNotifications(gomock.Any(), "bob").Return([]*entities.Notification{
		{
			ID:         2,
			Recipient:  "bob",
			Originator: &originator,
			Type:       entities.LikeNotification,
			Message:    "liked your post",
			CreatedAt:  time.Unix(400, 0),
			FromUser:   &entities.User{ID: "alice", Username: "alice", CreatedAt: time.Unix(1, 0)},
			Post:       &entities.Post{ID: 5, Owner: "bob", Image: "b.jpg", CreatedAt: time.Unix(2, 0)},
		},
	}, nil)

	router := chi.NewRouter()
	router.Get("/v1/notifications", srv.listNotifications)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `
[
	{
		"id": 2,
		"type": "like",
		"message": "liked your post",
		"read": false,
		"createdAt": 400,
		"originator": "alice",
		"fromUser": {"id": "alice", "username": "alice", "createdAt": 1},
		"post": {"id": 5, "owner": "bob", "image": "b.jpg", "createdAt": 2, "likesCount": 0, "commentsCount": 0, "liked": false}
	}
]
	`, w.Body.String())
}

func Test_markNotificationRead(t *testing.T) {
	r, err := http.NewRequest(http.MethodPost, "/v1/notifications/9/read", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().MarkNotificationRead(gomock.Any(), int64(9)).Return(false, nil)

	router := chi.NewRouter()
	router.Post("/v1/notifications/{id}/read", srv.markNotificationRead)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": false}`, w.Body.String())
}

func Test_internalError(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/v1/users/bob", nil)
	require.NoError(t, err)

	srv, svc := newTestServer(t)

	svc.EXPECT().GetUserProfile(gomock.Any(), "bob", "").Return(nil, errors.New("boom"))

	router := chi.NewRouter()
	router.Get("/v1/users/{id}", srv.getUserProfile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error": "internal error"}`, w.Body.String())
}
