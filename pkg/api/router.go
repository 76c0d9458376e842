package api

import (
	"net/http"
	"time"

	"campusnet/pkg/metrics"
	"campusnet/pkg/realtime"

	"github.com/gorilla/mux"
)

// instrumenter wraps a handler under a label, weaver.InstrumentHandlerFunc
// in production.
type instrumenter func(label string, fn http.HandlerFunc) http.Handler

func plain(_ string, fn http.HandlerFunc) http.Handler { return fn }

// newRouter mounts every route. Static segments are registered before
// their {id} siblings so that /api/users/bookmarks and /api/posts/following
// are not captured as ids.
func newRouter(h *handlers, instrument instrumenter, origin string) http.Handler {
	if instrument == nil {
		instrument = plain
	}
	route := func(r *mux.Router, method, path, label string, fn http.HandlerFunc) {
		r.Handle(path, instrument(label, timed(label, fn))).Methods(method)
	}

	root := mux.NewRouter()
	route(root, http.MethodPost, "/api/users/register", "register", h.register)
	route(root, http.MethodPost, "/api/users/login", "login", h.login)
	route(root, http.MethodGet, "/media/{name}", "media", h.serveMedia)
	root.Handle("/socket", realtime.Handler(h.registry, h.users.Authenticate, h.logger)).Methods(http.MethodGet)

	api := root.PathPrefix("/api").Subrouter()
	api.Use(h.authenticate)

	route(api, http.MethodGet, "/users/bookmarks", "bookmarks", h.bookmarks)
	route(api, http.MethodPost, "/users/avatar", "change_avatar", h.changeAvatar)
	route(api, http.MethodGet, "/users", "list_users", h.listUsers)
	route(api, http.MethodGet, "/users/{id}", "get_user", h.getUser)
	route(api, http.MethodPatch, "/users/{id}", "edit_user", h.editUser)
	route(api, http.MethodPatch, "/users/{id}/follow-unfollow", "follow_unfollow", h.followUnfollow)
	// older clients toggle follows with GET
	route(api, http.MethodGet, "/users/{id}/follow-unfollow", "follow_unfollow", h.followUnfollow)
	route(api, http.MethodGet, "/users/{id}/posts", "user_posts", h.userPosts)

	route(api, http.MethodGet, "/posts/following", "following_feed", h.followingFeed)
	route(api, http.MethodGet, "/posts", "global_feed", h.globalFeed)
	route(api, http.MethodPost, "/posts", "create_post", h.createPost)
	route(api, http.MethodGet, "/posts/{id}", "get_post", h.getPost)
	route(api, http.MethodPatch, "/posts/{id}", "edit_post", h.editPost)
	route(api, http.MethodDelete, "/posts/{id}", "delete_post", h.deletePost)
	route(api, http.MethodPatch, "/posts/{id}/like", "like", h.like)
	route(api, http.MethodPatch, "/posts/{id}/bookmark", "bookmark", h.bookmark)

	route(api, http.MethodPost, "/comments/{postId}", "create_comment", h.createComment)
	route(api, http.MethodGet, "/comments/{postId}", "post_comments", h.postComments)
	route(api, http.MethodDelete, "/comments/{commentId}", "delete_comment", h.deleteComment)

	route(api, http.MethodPost, "/messages/{receiverId}", "send_message", h.sendMessage)
	route(api, http.MethodGet, "/messages/{receiverId}", "get_messages", h.getMessages)
	route(api, http.MethodGet, "/conversations", "conversations", h.conversations)

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "Route not found"})
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: "Method not allowed"})
	})
	return cors(origin)(root)
}

func timed(label string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		fn(w, r)
		metrics.RequestDurationMs.Get(metrics.EndpointLabel{Endpoint: label}).Put(float64(time.Since(start).Milliseconds()))
	}
}
