// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/access"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Comments groups the comment thread handlers.
type Comments struct {
	comments *store.CommentStore
	posts    *store.PostStore
}

// NewComments creates a Comments handler group.
func NewComments(comments *store.CommentStore, posts *store.PostStore) *Comments {
	return &Comments{comments: comments, posts: posts}
}

// List returns the threaded comments of a visible post.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	post, ok := h.visiblePost(w, r, viewer)
	if !ok {
		return
	}

	comments, err := h.comments.ListByPost(post.ID)
	if err != nil {
		writeServerError(w, "comment list failed", err)
		return
	}

	writeData(w, http.StatusOK, comments)
}

type commentRequest struct {
	Body     string     `json:"body"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// Create adds a comment or a reply. Replies to replies are rejected:
// threads are at most two levels deep.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	post, ok := h.visiblePost(w, r, viewer)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCommentBody(req.Body); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "body")
		return
	}

	comment, err := h.comments.Create(post.ID, viewer.ID, req.ParentID, req.Body)
	switch {
	case errors.Is(err, store.ErrParentNotFound):
		writeError(w, http.StatusNotFound, "parent comment not found", "parent_id")
		return
	case errors.Is(err, store.ErrParentWrongPost):
		writeError(w, http.StatusBadRequest, "parent comment belongs to a different post", "parent_id")
		return
	case errors.Is(err, store.ErrMaxDepth):
		writeError(w, http.StatusBadRequest, "replies to replies are not allowed", "parent_id")
		return
	case err != nil:
		writeServerError(w, "comment create failed", err)
		return
	}

	writeData(w, http.StatusCreated, comment)
}

type commentEditRequest struct {
	Body string `json:"body"`
}

// Edit rewrites a comment's body. Only the author may edit, and only
// within the edit window.
func (h *Comments) Edit(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id", "id")
		return
	}

	var req commentEditRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateCommentBody(req.Body); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "body")
		return
	}

	comment, err := h.comments.Edit(id, viewer.ID, req.Body, time.Now())
	switch {
	case errors.Is(err, store.ErrNotCommentAuthor):
		writeError(w, http.StatusForbidden, "only the comment author may edit")
		return
	case errors.Is(err, store.ErrEditWindowExpired):
		writeError(w, http.StatusForbidden, "edit window has expired")
		return
	case err != nil:
		writeServerError(w, "comment edit failed", err)
		return
	case comment == nil:
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}

	writeData(w, http.StatusOK, comment)
}

// Delete removes a comment. Allowed for the comment author, the post
// author, and admins. Deleting a top-level comment removes its replies.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id", "id")
		return
	}

	comment, err := h.comments.FindByID(id)
	if err != nil {
		writeServerError(w, "comment lookup failed", err)
		return
	}
	if comment == nil {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}

	post, err := h.posts.FindByID(comment.PostID)
	if err != nil || post == nil {
		writeServerError(w, "comment post lookup failed", err)
		return
	}

	if !access.CanModerateComment(viewer, comment, post.AuthorID) {
		writeError(w, http.StatusForbidden, "not allowed to delete this comment")
		return
	}

	if err := h.comments.Delete(id); err != nil {
		writeServerError(w, "comment delete failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// visiblePost resolves the {id} post and applies the visibility rules.
// Writes a 404 and returns false when the post is missing or hidden from
// the viewer.
func (h *Comments) visiblePost(w http.ResponseWriter, r *http.Request, viewer access.Viewer) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id", "id")
		return nil, false
	}

	post, err := h.posts.FindByID(id)
	if err != nil {
		writeServerError(w, "post lookup failed", err)
		return nil, false
	}
	if post == nil || !access.CanViewPost(viewer, post, time.Now()) {
		writeError(w, http.StatusNotFound, "post not found")
		return nil, false
	}

	return post, true
}
