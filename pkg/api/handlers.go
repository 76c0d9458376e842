package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"campusnet/pkg/apperr"
	"campusnet/pkg/media"
	"campusnet/pkg/model"
	"campusnet/pkg/realtime"
	"campusnet/pkg/services"

	"github.com/gorilla/mux"
)

// MAX_UPLOAD_BYTES bounds multipart bodies; the per-kind caps are checked
// by the services.
const MAX_UPLOAD_BYTES = 4 << 20

type handlers struct {
	users    services.UserService
	graph    services.SocialGraphService
	posts    services.PostService
	feed     services.FeedService
	messages services.MessageService
	media    services.MediaService
	registry *realtime.Registry
	logger   *slog.Logger
}

// users

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := decode(r, &reg); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.Register(r.Context(), reg)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decode(r, &creds); err != nil {
		writeError(w, h.logger, err)
		return
	}
	session, err := h.users.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// editUser always edits the caller, whatever id the path names.
func (h *handlers) editUser(w http.ResponseWriter, r *http.Request) {
	var edit model.ProfileEdit
	if err := decode(r, &edit); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.EditUser(r.Context(), callerID(r.Context()), edit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *handlers) followUnfollow(w http.ResponseWriter, r *http.Request) {
	target, err := h.graph.ToggleFollow(r.Context(), callerID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

func (h *handlers) changeAvatar(w http.ResponseWriter, r *http.Request) {
	avatar, err := formFile(w, r, "avatar")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.ChangeAvatar(r.Context(), callerID(r.Context()), avatar)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *handlers) userPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feed.UserPosts(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handlers) bookmarks(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feed.Bookmarks(r.Context(), callerID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// posts

type postBody struct {
	Body string `json:"body"`
}

// createPost accepts a multipart form with "body" and an optional "image",
// or a plain json body.
func (h *handlers) createPost(w http.ResponseWriter, r *http.Request) {
	var body string
	var image model.Upload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		var err error
		image, err = formFile(w, r, "image")
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		body = r.FormValue("body")
	} else {
		var pb postBody
		if err := decode(r, &pb); err != nil {
			writeError(w, h.logger, err)
			return
		}
		body = pb.Body
	}
	post, err := h.posts.CreatePost(r.Context(), callerID(r.Context()), body, image)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *handlers) globalFeed(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	posts, err := h.feed.GlobalFeed(r.Context(), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handlers) followingFeed(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	posts, err := h.feed.FollowingFeed(r.Context(), callerID(r.Context()), page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handlers) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.feed.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handlers) editPost(w http.ResponseWriter, r *http.Request) {
	var pb postBody
	if err := decode(r, &pb); err != nil {
		writeError(w, h.logger, err)
		return
	}
	post, err := h.posts.EditPost(r.Context(), callerID(r.Context()), mux.Vars(r)["id"], pb.Body)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handlers) deletePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.DeletePost(r.Context(), callerID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handlers) like(w http.ResponseWriter, r *http.Request) {
	post, err := h.graph.ToggleLike(r.Context(), callerID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *handlers) bookmark(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.graph.ToggleBookmark(r.Context(), callerID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

// comments

type commentBody struct {
	Comment string `json:"comment"`
}

func (h *handlers) createComment(w http.ResponseWriter, r *http.Request) {
	var cb commentBody
	if err := decode(r, &cb); err != nil {
		writeError(w, h.logger, err)
		return
	}
	comment, err := h.posts.CreateComment(r.Context(), callerID(r.Context()), mux.Vars(r)["postId"], cb.Comment)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *handlers) postComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.feed.PostComments(r.Context(), mux.Vars(r)["postId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *handlers) deleteComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.posts.DeleteComment(r.Context(), callerID(r.Context()), mux.Vars(r)["commentId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// messages

type messageBody struct {
	MessageText string `json:"messageText"`
}

func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var mb messageBody
	if err := decode(r, &mb); err != nil {
		writeError(w, h.logger, err)
		return
	}
	msg, err := h.messages.SendMessage(r.Context(), callerID(r.Context()), mux.Vars(r)["receiverId"], mb.MessageText)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *handlers) getMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.GetMessages(r.Context(), callerID(r.Context()), mux.Vars(r)["receiverId"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *handlers) conversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.messages.ListConversations(r.Context(), callerID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, convs)
}

// media

func (h *handlers) serveMedia(w http.ResponseWriter, r *http.Request) {
	file, err := h.media.Fetch(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	w.Write(file.Data)
}

// formFile reads the multipart file field. A missing field is an empty
// upload; the size caps are left to the services, so at most one byte past
// the largest cap is read.
func formFile(w http.ResponseWriter, r *http.Request, field string) (model.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MAX_UPLOAD_BYTES)
	if err := r.ParseMultipartForm(MAX_UPLOAD_BYTES); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.Upload{}, apperr.Validation("File size too large (Max 1MB)")
		}
		return model.Upload{}, apperr.Validation("Invalid upload")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return model.Upload{}, nil
		}
		return model.Upload{}, apperr.Validation("Invalid upload")
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, media.MAX_POST_IMAGE_BYTES+1))
	if err != nil {
		return model.Upload{}, apperr.Validation("Invalid upload")
	}
	return model.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
