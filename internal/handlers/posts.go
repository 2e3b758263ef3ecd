// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/access"
	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/richtext"
	"inkwell/internal/store"
)

// previewWordBudget is how many words of a premium post are rendered for
// viewers without premium access.
const previewWordBudget = 100

// Posts groups the post lifecycle and feed handlers.
type Posts struct {
	posts      *store.PostStore
	taxonomy   *store.TaxonomyStore
	engagement *store.EngagementStore
	gate       *access.Gate
	feed       *cache.FeedCache
}

// NewPosts creates a Posts handler group. feed may be nil to disable
// feed caching.
func NewPosts(posts *store.PostStore, taxonomy *store.TaxonomyStore, engagement *store.EngagementStore, gate *access.Gate, feed *cache.FeedCache) *Posts {
	return &Posts{
		posts:      posts,
		taxonomy:   taxonomy,
		engagement: engagement,
		gate:       gate,
		feed:       feed,
	}
}

// postView is a post plus render metadata for a single-post response.
type postView struct {
	*models.Post
	Preview   bool `json:"preview"`
	ViewCount int  `json:"view_count"`
}

// Feed serves the public published feed. Responses for the first page of
// each filter combination are cached in Valkey.
func (h *Posts) Feed(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)
	category := r.URL.Query().Get("category")
	tag := r.URL.Query().Get("tag")

	cacheable := h.feed != nil && page == 1 && perPage == 20
	key := cache.FeedKey(category, tag, page)

	if cacheable {
		if payload, ok := h.feed.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(payload)
			return
		}
	}

	posts, total, err := h.posts.ListPublished(store.PublishedFilter{
		CategorySlug: category,
		TagSlug:      tag,
		Page:         page,
		PerPage:      perPage,
	})
	if err != nil {
		writeServerError(w, "feed query failed", err)
		return
	}

	// Feed entries never carry the full document.
	for i := range posts {
		posts[i].Doc = nil
		if posts[i].Premium {
			posts[i].BodyHTML = ""
		}
	}

	envelope := dataEnvelope{
		Data:       posts,
		Pagination: &Pagination{Page: page, PerPage: perPage, Total: total},
	}

	if cacheable {
		if payload, err := json.Marshal(envelope); err == nil {
			h.feed.Set(r.Context(), key, payload)
		}
	}

	writeJSON(w, http.StatusOK, envelope)
}

// Get serves a single post by slug. Visibility is resolved per viewer;
// denied reads return 404 so drafts don't leak their existence. Premium
// bodies are truncated to a preview unless the viewer has access.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	post, err := h.posts.FindBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		writeServerError(w, "post lookup failed", err)
		return
	}
	if post == nil || !access.CanViewPost(viewer, post, time.Now()) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	view := postView{Post: post}

	if post.Premium && !h.gate.RenderFull(viewer, post) {
		preview, err := richtext.PreviewHTML(post.Doc, previewWordBudget)
		if err != nil {
			writeServerError(w, "preview render failed", err)
			return
		}
		post.BodyHTML = preview
		post.Doc = nil
		view.Preview = true
	}

	// Views only count on the public read path.
	if post.IsPublished(time.Now()) {
		h.engagement.TrackView(post.ID, viewerHash(r, viewer), time.Now())
	}

	if count, err := h.engagement.ViewCount(post.ID); err == nil {
		view.ViewCount = count
	}

	writeData(w, http.StatusOK, view)
}

type postRequest struct {
	Title      string          `json:"title"`
	Doc        json.RawMessage `json:"doc"`
	Excerpt    *string         `json:"excerpt"`
	Premium    bool            `json:"premium"`
	Categories []string        `json:"categories"`
	Tags       []string        `json:"tags"`

	// Update only.
	Status       models.PostStatus `json:"status"`
	ScheduledFor *time.Time        `json:"scheduled_for"`
}

// Create makes a new draft owned by the caller. Lifecycle transitions
// happen through Update.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.ViewerFromCtx(r.Context())

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTitle(req.Title); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "title")
		return
	}
	if msg := validateDoc(req.Doc); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "doc")
		return
	}
	if req.Excerpt != nil && len(*req.Excerpt) > maxExcerptLen {
		writeError(w, http.StatusBadRequest, "excerpt is too long", "excerpt")
		return
	}

	bodyHTML, err := richtext.ToHTML(req.Doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document", "doc")
		return
	}

	postSlug, err := h.posts.UniqueSlug(req.Title, uuid.Nil)
	if err != nil {
		writeServerError(w, "slug generation failed", err)
		return
	}

	post := &models.Post{
		AuthorID:  viewer.ID,
		Title:     strings.TrimSpace(req.Title),
		Slug:      postSlug,
		Doc:       req.Doc,
		BodyHTML:  bodyHTML,
		Excerpt:   req.Excerpt,
		Status:    models.PostStatusDraft,
		Premium:   req.Premium,
		WordCount: richtext.WordCount(req.Doc),
	}

	created, err := h.posts.Create(post)
	if err != nil {
		writeServerError(w, "post create failed", err)
		return
	}

	if err := h.applyTaxonomy(created.ID, req.Categories, req.Tags); err != nil {
		writeServerError(w, "post taxonomy failed", err)
		return
	}

	h.invalidateFeed(r)
	writeData(w, http.StatusCreated, created)
}

// Update edits a post and drives its lifecycle. Valid transitions:
// draft→scheduled (future scheduled_for required), draft/scheduled→published,
// published→archived. published_at is set exactly once.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
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
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if !access.CanEditPost(viewer, post) {
		writeError(w, http.StatusForbidden, "not allowed to edit this post")
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTitle(req.Title); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "title")
		return
	}
	if msg := validateDoc(req.Doc); msg != "" {
		writeError(w, http.StatusBadRequest, msg, "doc")
		return
	}

	newStatus := req.Status
	if newStatus == "" {
		newStatus = post.Status
	}
	if !newStatus.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status", "status")
		return
	}
	if !validTransition(post.Status, newStatus) {
		writeError(w, http.StatusConflict, "invalid status transition")
		return
	}

	if newStatus == models.PostStatusScheduled {
		if req.ScheduledFor == nil || !req.ScheduledFor.After(time.Now()) {
			writeError(w, http.StatusBadRequest, "scheduled_for must be in the future", "scheduled_for")
			return
		}
		post.ScheduledFor = req.ScheduledFor
	}

	// published_at is set exactly once.
	if newStatus == models.PostStatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	bodyHTML, err := richtext.ToHTML(req.Doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document", "doc")
		return
	}

	// Slug is regenerated only when the title changes.
	if strings.TrimSpace(req.Title) != post.Title {
		newSlug, err := h.posts.UniqueSlug(req.Title, post.ID)
		if err != nil {
			writeServerError(w, "slug generation failed", err)
			return
		}
		post.Slug = newSlug
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Doc = req.Doc
	post.BodyHTML = bodyHTML
	post.Excerpt = req.Excerpt
	post.Premium = req.Premium
	post.Status = newStatus
	post.WordCount = richtext.WordCount(req.Doc)

	if err := h.posts.Update(post); err != nil {
		writeServerError(w, "post update failed", err)
		return
	}

	if req.Categories != nil || req.Tags != nil {
		if err := h.applyTaxonomy(post.ID, req.Categories, req.Tags); err != nil {
			writeServerError(w, "post taxonomy failed", err)
			return
		}
	}

	h.invalidateFeed(r)
	writeData(w, http.StatusOK, post)
}

// Delete removes a post and everything hanging off it.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
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
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if !access.CanEditPost(viewer, post) {
		writeError(w, http.StatusForbidden, "not allowed to delete this post")
		return
	}

	if err := h.posts.Delete(id); err != nil {
		writeServerError(w, "post delete failed", err)
		return
	}

	h.invalidateFeed(r)
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// validTransition encodes the post lifecycle. Staying in the current
// status is always allowed.
func validTransition(from, to models.PostStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.PostStatusDraft:
		return to == models.PostStatusScheduled || to == models.PostStatusPublished
	case models.PostStatusScheduled:
		return to == models.PostStatusDraft || to == models.PostStatusPublished
	case models.PostStatusPublished:
		return to == models.PostStatusArchived
	default:
		return false
	}
}

// applyTaxonomy upserts category and tag names and links them to the post.
func (h *Posts) applyTaxonomy(postID uuid.UUID, categories, tags []string) error {
	catIDs, err := h.taxonomy.EnsureCategories(categories)
	if err != nil {
		return err
	}
	if err := h.posts.SetCategories(postID, catIDs); err != nil {
		return err
	}

	tagIDs, err := h.taxonomy.EnsureTags(tags)
	if err != nil {
		return err
	}
	return h.posts.SetTags(postID, tagIDs)
}

// invalidateFeed clears the cached feed pages after a post mutation.
func (h *Posts) invalidateFeed(r *http.Request) {
	if h.feed != nil {
		h.feed.InvalidateAll(r.Context())
	}
}

// viewerHash derives the view-dedup key: the account ID for signed-in
// viewers, otherwise the client IP plus user agent. Hashed so raw
// addresses never reach the database.
func viewerHash(r *http.Request, viewer access.Viewer) string {
	var identity string
	if !viewer.Anonymous() {
		identity = viewer.ID.String()
	} else {
		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			ip = r.RemoteAddr
		}
		identity = ip + "|" + r.UserAgent()
	}
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:16])
}
