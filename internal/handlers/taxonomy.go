package handlers

import (
	"net/http"

	"inkwell/internal/store"
)

// Taxonomy serves the public category and tag listings.
type Taxonomy struct {
	taxonomy *store.TaxonomyStore
}

// NewTaxonomy creates a Taxonomy handler group.
func NewTaxonomy(taxonomy *store.TaxonomyStore) *Taxonomy {
	return &Taxonomy{taxonomy: taxonomy}
}

// Categories lists categories with their published post counts.
func (h *Taxonomy) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomy.ListCategories()
	if err != nil {
		writeServerError(w, "category list failed", err)
		return
	}
	writeData(w, http.StatusOK, categories)
}

// Tags lists all tags.
func (h *Taxonomy) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.taxonomy.ListTags()
	if err != nil {
		writeServerError(w, "tag list failed", err)
		return
	}
	writeData(w, http.StatusOK, tags)
}
