package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/lenscape/lenscape/internal/entities"
	"github.com/lenscape/lenscape/internal/service"
	"github.com/lenscape/lenscape/internal/storage"
)

var errInvalidRequest = errors.New("invalid request")

func (s server) getHomeFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /feed/home Feed GetHomeFeed
	//
	// Posts authored by the viewer and by accounts the viewer follows,
	// newest first, enriched with counts and the viewer's liked flag.
	//
	// ---
	// parameters:
	// - name: viewerId
	//   in: query
	//   required: true
	// - name: limit
	//   in: query
	//   required: false
	//   default: 20
	//   maximum: 100
	// - name: after
	//   in: query
	//   description: id of the last post of the previous page
	//   required: false
	// responses:
	//   '200':
	//     schema:
	//       "$ref": "#/definitions/FeedResponse"
	//   '404':
	//     description: viewer not found

	viewer, p, err := extractFeedParams(r.URL.Query(), defaultFeedLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := s.s.GetHomeFeed(r.Context(), viewer, p)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get home feed")
		return
	}

	writeOK(w, http.StatusOK, newFeedResponse(posts, p.Limit))
}

func (s server) getExploreFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /feed/explore Feed GetExploreFeed
	//
	// Posts by everyone except the viewer, newest first.
	//
	// ---
	// parameters:
	// - name: viewerId
	//   in: query
	//   required: true
	// - name: limit
	//   in: query
	//   required: false
	//   default: 20
	//   maximum: 100
	// - name: after
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     schema:
	//       "$ref": "#/definitions/FeedResponse"

	viewer, p, err := extractFeedParams(r.URL.Query(), defaultFeedLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := s.s.GetExploreFeed(r.Context(), viewer, p)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get explore feed")
		return
	}

	writeOK(w, http.StatusOK, newFeedResponse(posts, p.Limit))
}

func (s server) getProfileFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /users/{id}/posts Feed GetProfileFeed
	//
	// All posts of a single author, newest first, paginated by cursor.
	//
	// ---
	// responses:
	//   '200':
	//     schema:
	//       "$ref": "#/definitions/FeedResponse"
	//   '404':
	//     description: author not found

	author := chi.URLParam(r, "id")

	p, err := extractPageParams(r.URL.Query(), defaultProfileFeedLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := s.s.GetProfileFeed(r.Context(), author, p)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get profile feed")
		return
	}

	writeOK(w, http.StatusOK, newFeedResponse(posts, p.Limit))
}

func (s server) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := s.s.GetPost(r.Context(), id, r.URL.Query().Get("viewerId"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get post")
		return
	}

	resp := PostDetailsResponse{
		Post:     *toAPIFeedPost(&post.FeedPost),
		Comments: make([]*Comment, len(post.CommentList)),
	}
	for i, c := range post.CommentList {
		resp.Comments[i] = toAPIComment(c)
	}

	writeOK(w, http.StatusOK, resp)
}

func (s server) createPost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode body")
		return
	}

	if req.UserID == "" || req.Image == "" {
		writeError(w, http.StatusBadRequest, "userId and image are required")
		return
	}

	post, err := s.s.CreatePost(r.Context(), &storage.CreatePostParams{
		Owner:    req.UserID,
		Image:    req.Image,
		Caption:  req.Caption,
		Location: req.Location,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "failed to create post")
		return
	}

	writeOK(w, http.StatusCreated, toAPIPost(post))
}

func (s server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	viewer := r.URL.Query().Get("viewerId")
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "viewerId is required")
		return
	}

	if err := s.s.DeletePost(r.Context(), id, viewer); err != nil {
		s.writeServiceError(w, r, err, "failed to delete post")
		return
	}

	writeOK(w, http.StatusOK, Success{Success: true})
}

func (s server) likePost(w http.ResponseWriter, r *http.Request) {
	id, actor, err := extractIDAndActor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	liked, err := s.s.Like(r.Context(), actor, id)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to like post")
		return
	}

	writeOK(w, http.StatusOK, Success{Success: liked})
}

func (s server) unlikePost(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	viewer := r.URL.Query().Get("viewerId")
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "viewerId is required")
		return
	}

	removed, err := s.s.Unlike(r.Context(), viewer, id)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to unlike post")
		return
	}

	writeOK(w, http.StatusOK, Success{Success: removed})
}

func (s server) listComments(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := s.s.GetComments(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list comments")
		return
	}

	out := make([]*Comment, len(comments))
	for i, c := range comments {
		out[i] = toAPIComment(c)
	}

	writeOK(w, http.StatusOK, out)
}

func (s server) addComment(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode body")
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	comment, err := s.s.AddComment(r.Context(), id, req.UserID, req.Text)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to add comment")
		return
	}

	writeOK(w, http.StatusCreated, toAPIComment(comment))
}

func (s server) follow(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")

	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	created, err := s.s.Follow(r.Context(), req.UserID, target)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to follow")
		return
	}

	writeOK(w, http.StatusOK, Success{Success: created})
}

func (s server) unfollow(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")

	viewer := r.URL.Query().Get("viewerId")
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "viewerId is required")
		return
	}

	removed, err := s.s.Unfollow(r.Context(), viewer, target)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to unfollow")
		return
	}

	writeOK(w, http.StatusOK, Success{Success: removed})
}

func (s server) listFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := s.s.GetFollowers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list followers")
		return
	}

	writeOK(w, http.StatusOK, toAPIUsers(users))
}

func (s server) listFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := s.s.GetFollowing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list following")
		return
	}

	writeOK(w, http.StatusOK, toAPIUsers(users))
}

func (s server) getUserProfile(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /users/{id} Users GetUserProfile
	//
	// Profile with post/follower/following counts and the viewer's follow flag.
	//
	// ---
	// responses:
	//   '200':
	//     schema:
	//       "$ref": "#/definitions/Profile"
	//   '404':
	//     description: user not found

	profile, err := s.s.GetUserProfile(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("viewerId"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get profile")
		return
	}

	writeOK(w, http.StatusOK, toAPIProfile(profile))
}

func (s server) upsertUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode body")
		return
	}

	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	user, err := s.s.UpsertUser(r.Context(), &entities.User{
		ID:        id,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		Bio:       req.Bio,
		Website:   req.Website,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "failed to upsert user")
		return
	}

	writeOK(w, http.StatusOK, toAPIUser(user))
}

func (s server) updateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode body")
		return
	}

	user, err := s.s.UpdateProfile(r.Context(), id, &storage.UpdateProfileParams{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		Bio:       req.Bio,
		Website:   req.Website,
	})
	if err != nil {
		s.writeServiceError(w, r, err, "failed to update profile")
		return
	}

	writeOK(w, http.StatusOK, toAPIUser(user))
}

func (s server) searchUsers(w http.ResponseWriter, r *http.Request) {
	if username := r.URL.Query().Get("username"); username != "" {
		user, err := s.s.GetUserByUsername(r.Context(), username)
		if err != nil {
			s.writeServiceError(w, r, err, "failed to get user")
			return
		}

		writeOK(w, http.StatusOK, toAPIUser(user))
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query or username is required")
		return
	}

	users, err := s.s.SearchUsers(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to search users")
		return
	}

	writeOK(w, http.StatusOK, toAPIUsers(users))
}

func (s server) createStory(w http.ResponseWriter, r *http.Request) {
	var req CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "failed to decode body")
		return
	}

	if req.UserID == "" || req.Image == "" {
		writeError(w, http.StatusBadRequest, "userId and image are required")
		return
	}

	story, err := s.s.CreateStory(r.Context(), req.UserID, req.Image)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to create story")
		return
	}

	writeOK(w, http.StatusCreated, toAPIStory(story))
}

func (s server) listActiveStories(w http.ResponseWriter, r *http.Request) {
	viewer := r.URL.Query().Get("viewerId")
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "viewerId is required")
		return
	}

	stories, err := s.s.GetActiveStories(r.Context(), viewer)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list stories")
		return
	}

	out := make([]*Story, len(stories))
	for i, v := range stories {
		out[i] = toAPIStory(v)
	}

	writeOK(w, http.StatusOK, out)
}

func (s server) listUserStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.s.GetUserStories(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list stories")
		return
	}

	out := make([]*Story, len(stories))
	for i, v := range stories {
		out[i] = toAPIStory(v)
	}

	writeOK(w, http.StatusOK, out)
}

func (s server) listNotifications(w http.ResponseWriter, r *http.Request) {
	viewer := r.URL.Query().Get("viewerId")
	if viewer == "" {
		writeError(w, http.StatusBadRequest, "viewerId is required")
		return
	}

	notifications, err := s.s.GetNotifications(r.Context(), viewer)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list notifications")
		return
	}

	out := make([]*Notification, len(notifications))
	for i, v := range notifications {
		out[i] = toAPINotification(v)
	}

	writeOK(w, http.StatusOK, out)
}

func (s server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := extractID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	marked, err := s.s.MarkNotificationRead(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to mark notification read")
		return
	}

	writeOK(w, http.StatusOK, Success{Success: marked})
}

func (s server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrSelfFollow):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyComment), errors.Is(err, service.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeInternalError(r.Context(), w, err, message)
	}
}

func extractID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", errInvalidRequest)
	}

	return id, nil
}

func extractIDAndActor(r *http.Request) (int64, string, error) {
	id, err := extractID(r)
	if err != nil {
		return 0, "", err
	}

	var req ActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		return 0, "", fmt.Errorf("%w: userId is required", errInvalidRequest)
	}

	return id, req.UserID, nil
}

func extractFeedParams(q url.Values, defaultLimit uint16) (string, service.FeedParams, error) {
	viewer := q.Get("viewerId")
	if viewer == "" {
		return "", service.FeedParams{}, fmt.Errorf("%w: viewerId is required", errInvalidRequest)
	}

	p, err := extractPageParams(q, defaultLimit)

	return viewer, p, err
}

func extractPageParams(q url.Values, defaultLimit uint16) (service.FeedParams, error) {
	out := service.FeedParams{
		Limit: defaultLimit,
	}

	if s := q.Get("limit"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil || v == 0 {
			return out, fmt.Errorf("%w: failed to parse limit", errInvalidRequest)
		}

		if v > maxLimit {
			return out, fmt.Errorf("%w: limit is too big", errInvalidRequest)
		}

		out.Limit = uint16(v)
	}

	if s := q.Get("after"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return out, fmt.Errorf("%w: failed to parse after", errInvalidRequest)
		}

		out.After = &v
	}

	return out, nil
}
