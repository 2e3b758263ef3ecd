package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for request fields.
const (
	maxTitleLen   = 300
	maxDocLen     = 200_000
	maxExcerptLen = 1_000
	maxCommentLen = 10_000
	maxNameLen    = 100
	minPassword   = 8
)

// validEmail reports whether the address parses as a bare RFC 5322 address.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// validateTitle returns the first problem with a post or newsletter title,
// or "" when valid.
func validateTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "title is required"
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "title is too long (max 300 characters)"
	}
	return ""
}

// validateDoc bounds the raw rich-text document size.
func validateDoc(doc []byte) string {
	if len(doc) == 0 {
		return "doc is required"
	}
	if len(doc) > maxDocLen {
		return "doc is too large"
	}
	return ""
}

// validateCommentBody checks a comment body.
func validateCommentBody(body string) string {
	if strings.TrimSpace(body) == "" {
		return "body is required"
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		return "body is too long (max 10,000 characters)"
	}
	return ""
}
