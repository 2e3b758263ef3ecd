// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP API. Every response uses the same
// envelope: {"data": ...} with optional pagination on success,
// {"error": {"message": ..., "field": ...}} on failure.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Pagination describes the page window of a list response.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

type dataEnvelope struct {
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// writeData writes a success envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

// writePage writes a success envelope with pagination.
func writePage(w http.ResponseWriter, status int, data any, p Pagination) {
	writeJSON(w, status, dataEnvelope{Data: data, Pagination: &p})
}

// writeError writes a failure envelope. field is optional and names the
// offending request field for validation errors.
func writeError(w http.ResponseWriter, status int, message string, field ...string) {
	body := errorBody{Message: message}
	if len(field) > 0 {
		body.Field = field[0]
	}
	writeJSON(w, status, errorEnvelope{Error: body})
}

// writeServerError logs the error and writes a generic 500 so internals
// never leak to clients.
func writeServerError(w http.ResponseWriter, op string, err error) {
	slog.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// decodeJSON parses the request body into dst. Returns false after writing
// a 400 when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// pageParams reads ?page and ?per_page with sane bounds.
func pageParams(r *http.Request) (page, perPage int) {
	page = 1
	perPage = 20

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 && v <= 100 {
		perPage = v
	}
	return page, perPage
}
