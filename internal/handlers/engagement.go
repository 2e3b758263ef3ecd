// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/access"
	"inkwell/internal/middleware"
	"inkwell/internal/store"
)

// Engagement groups the like, bookmark, and bookmark-listing handlers.
type Engagement struct {
	engagement *store.EngagementStore
	posts      *store.PostStore
}

// NewEngagement creates an Engagement handler group.
func NewEngagement(engagement *store.EngagementStore, posts *store.PostStore) *Engagement {
	return &Engagement{engagement: engagement, posts: posts}
}

// ToggleLike flips the caller's like on a post and reports the new state.
func (h *Engagement) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.engagement.ToggleLike, "liked")
}

// ToggleBookmark flips the caller's bookmark on a post.
func (h *Engagement) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.engagement.ToggleBookmark, "bookmarked")
}

// toggle resolves the post, applies visibility, and runs the store toggle.
// The DB unique constraint arbitrates concurrent toggles, so two racing
// requests settle on a consistent final state.
func (h *Engagement) toggle(w http.ResponseWriter, r *http.Request, op func(postID, accountID uuid.UUID) (bool, error), key string) {
	viewer := middleware.ViewerFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id", "id")
		return
	}

	post, err := h.posts.FindByID(id)
	if err != nil {
		writeServerError(w, "post lookup failed", err)
		return
	}
	if post == nil || !access.CanViewPost(viewer, post, time.Now()) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	state, err := op(post.ID, viewer.ID)
	if err != nil {
		writeServerError(w, "engagement toggle failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{key: state})
}

// Bookmarks lists the caller's bookmarked posts, newest first.
func (h *Engagement) Bookmarks(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())
	page, perPage := pageParams(r)

	posts, total, err := h.engagement.ListBookmarked(viewer.ID, page, perPage)
	if err != nil {
		writeServerError(w, "bookmark list failed", err)
		return
	}

	for i := range posts {
		posts[i].Doc = nil
	}

	writePage(w, http.StatusOK, posts, Pagination{Page: page, PerPage: perPage, Total: total})
}
