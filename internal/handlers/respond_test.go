package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusCreated, map[string]string{"hello": "world"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var resp struct {
		Data       map[string]string `json:"data"`
		Pagination *Pagination       `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data["hello"] != "world" {
		t.Errorf("data = %v", resp.Data)
	}
	if resp.Pagination != nil {
		t.Error("pagination present on unpaginated response")
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "title is required", "title")

	var resp struct {
		Error struct {
			Message string `json:"message"`
			Field   string `json:"field"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Message != "title is required" || resp.Error.Field != "title" {
		t.Errorf("error = %+v", resp.Error)
	}

	// Without a field the key is omitted entirely.
	rec2 := httptest.NewRecorder()
	writeError(rec2, http.StatusNotFound, "post not found")
	var raw map[string]map[string]any
	if err := json.Unmarshal(rec2.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["error"]["field"]; ok {
		t.Error("empty field serialized")
	}
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		url         string
		wantPage    int
		wantPerPage int
	}{
		{"/api/posts", 1, 20},
		{"/api/posts?page=3&per_page=50", 3, 50},
		{"/api/posts?page=0&per_page=0", 1, 20},
		{"/api/posts?page=-2", 1, 20},
		{"/api/posts?per_page=1000", 1, 20},
		{"/api/posts?page=abc&per_page=xyz", 1, 20},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, tc.url, nil)
		page, perPage := pageParams(r)
		if page != tc.wantPage || perPage != tc.wantPerPage {
			t.Errorf("pageParams(%s) = (%d, %d), want (%d, %d)",
				tc.url, page, perPage, tc.wantPage, tc.wantPerPage)
		}
	}
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)

	var dst struct{}
	if decodeJSON(rec, req, &dst) {
		t.Error("decodeJSON accepted an empty body")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
