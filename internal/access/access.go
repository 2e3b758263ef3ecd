// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access decides who may read what. The visibility resolver is a
// pure function over the viewer and the post; the subscription gate wraps a
// store lookup and fails closed. Viewer identity is carried explicitly on
// every call — there is no ambient session state.
package access

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Viewer identifies the requesting party. The zero value is an anonymous
// visitor.
type Viewer struct {
	ID   uuid.UUID
	Role models.Role
}

// Anonymous reports whether the viewer carries no identity.
func (v Viewer) Anonymous() bool {
	return v.ID == uuid.Nil
}

// CanViewPost decides read access for a post.
//   - Editors and admins see everything.
//   - Authors always see their own posts.
//   - Everyone else sees only published posts whose publication time has passed.
func CanViewPost(v Viewer, post *models.Post, now time.Time) bool {
	if v.Role.AtLeast(models.RoleEditor) {
		return true
	}
	if !v.Anonymous() && v.ID == post.AuthorID {
		return true
	}
	return post.IsPublished(now)
}

// CanEditPost decides write access: the author of the post, or editor+.
func CanEditPost(v Viewer, post *models.Post) bool {
	if v.Role.AtLeast(models.RoleEditor) {
		return true
	}
	return !v.Anonymous() && v.ID == post.AuthorID
}

// CanModerateComment decides whether the viewer may delete a comment:
// the comment's author, the post's author, or an admin.
func CanModerateComment(v Viewer, comment *models.Comment, postAuthorID uuid.UUID) bool {
	if v.Anonymous() {
		return false
	}
	if v.Role == models.RoleAdmin {
		return true
	}
	return v.ID == comment.AccountID || v.ID == postAuthorID
}

// SubscriptionLookup is the slice of the subscription store the gate needs.
type SubscriptionLookup interface {
	FindByAccount(accountID uuid.UUID) (*models.Subscription, error)
}

// Gate answers premium-access questions for viewers.
type Gate struct {
	subs SubscriptionLookup
}

// NewGate creates a premium gate over the given subscription lookup.
func NewGate(subs SubscriptionLookup) *Gate {
	return &Gate{subs: subs}
}

// HasPremiumAccess reports whether the account holds an active paid
// subscription. Missing records, free tier, lapsed expiry, and lookup
// failures all yield false — the gate never fails open.
func (g *Gate) HasPremiumAccess(accountID uuid.UUID) bool {
	if accountID == uuid.Nil {
		return false
	}
	sub, err := g.subs.FindByAccount(accountID)
	if err != nil {
		slog.Warn("subscription lookup failed, denying premium access",
			"account_id", accountID, "error", err)
		return false
	}
	if sub == nil {
		return false
	}
	return sub.ActivePaid(time.Now())
}

// RenderFull decides whether a premium post's full body is rendered for the
// viewer, or only a paywall preview. Non-premium posts always render fully.
// The post's author, editors, and admins bypass the paywall.
func (g *Gate) RenderFull(v Viewer, post *models.Post) bool {
	if !post.Premium {
		return true
	}
	if v.Role.AtLeast(models.RoleEditor) {
		return true
	}
	if !v.Anonymous() && v.ID == post.AuthorID {
		return true
	}
	return g.HasPremiumAccess(v.ID)
}
