// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/session"
)

// seedPublishedPost inserts a published post owned by author.
func seedPublishedPost(t *testing.T, env *testEnv, authorID uuid.UUID) *models.Post {
	t.Helper()
	now := time.Now().Add(-time.Minute)
	post, err := env.PostStore.Create(&models.Post{
		AuthorID:    authorID,
		Title:       "Comment Target",
		Slug:        "comment-target-" + uuid.NewString()[:8],
		Doc:         json.RawMessage(testDoc("target")),
		BodyHTML:    "<p>target</p>",
		Status:      models.PostStatusPublished,
		PublishedAt: &now,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	t.Cleanup(func() { env.PostStore.Delete(post.ID) })
	return post
}

func TestCommentCreateAndReplyDepth(t *testing.T) {
	env := newTestEnv(t)
	author := testAccount(t, env.Accounts, models.RoleAuthor)
	reader := testAccount(t, env.Accounts, models.RoleReader)
	post := seedPublishedPost(t, env, author.ID)
	sess := testSession(reader.ID, reader.Email, models.RoleReader)

	create := func(body string) (*httptest.ResponseRecorder, models.Comment) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts/"+post.ID.String()+"/comments", strings.NewReader(body))
		req = withChiURLParamAndSession(req, "id", post.ID.String(), sess)
		rec := httptest.NewRecorder()
		env.Comments.Create(rec, req)
		var resp struct {
			Data models.Comment `json:"data"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec, resp.Data
	}

	rec, top := create(`{"body":"top level"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("top comment status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, reply := create(`{"body":"a reply","parent_id":"` + top.ID.String() + `"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("reply status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Replies to replies are rejected.
	rec, _ = create(`{"body":"too deep","parent_id":"` + reply.ID.String() + `"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("depth-2 reply status = %d, want 400", rec.Code)
	}

	// A parent from another post is rejected.
	otherPost := seedPublishedPost(t, env, author.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/posts/"+otherPost.ID.String()+"/comments",
		strings.NewReader(`{"body":"wrong thread","parent_id":"`+top.ID.String()+`"}`))
	req = withChiURLParamAndSession(req, "id", otherPost.ID.String(), sess)
	wrongRec := httptest.NewRecorder()
	env.Comments.Create(wrongRec, req)
	if wrongRec.Code != http.StatusBadRequest {
		t.Errorf("cross-post parent status = %d, want 400", wrongRec.Code)
	}

	// Listing returns the thread with the reply nested.
	listReq := httptest.NewRequest(http.MethodGet, "/api/posts/"+post.ID.String()+"/comments", nil)
	listReq = withChiURLParam(listReq, "id", post.ID.String())
	listRec := httptest.NewRecorder()
	env.Comments.List(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list status = %d", listRec.Code)
	}
	var listResp struct {
		Data []models.Comment `json:"data"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Data) != 1 || len(listResp.Data[0].Replies) != 1 {
		t.Errorf("thread shape = %d top / %d replies, want 1/1",
			len(listResp.Data), len(listResp.Data[0].Replies))
	}
}

func TestCommentEditWindow(t *testing.T) {
	env := newTestEnv(t)
	author := testAccount(t, env.Accounts, models.RoleAuthor)
	reader := testAccount(t, env.Accounts, models.RoleReader)
	post := seedPublishedPost(t, env, author.ID)

	comment, err := env.CommentStore.Create(post.ID, reader.ID, nil, "original body")
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	edit := func(sess *session.Data, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/comments/"+comment.ID.String(), strings.NewReader(body))
		req = withChiURLParamAndSession(req, "id", comment.ID.String(), sess)
		rec := httptest.NewRecorder()
		env.Comments.Edit(rec, req)
		return rec
	}

	readerSess := testSession(reader.ID, reader.Email, models.RoleReader)
	authorSess := testSession(author.ID, author.Email, models.RoleAuthor)

	// The comment author can edit within the window.
	rec := edit(readerSess, `{"body":"amended body"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("author edit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.Comment `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode edit: %v", err)
	}
	if !resp.Data.Edited || resp.Data.Body != "amended body" {
		t.Errorf("edited comment = %+v, want edited=true with new body", resp.Data)
	}

	// Someone else cannot, even the post's author.
	rec = edit(authorSess, `{"body":"hijacked"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-author edit status = %d, want 403", rec.Code)
	}

	// Past the window the edit is refused.
	if _, err := env.DB.Exec(
		"UPDATE comments SET created_at = now() - interval '16 minutes' WHERE id = $1",
		comment.ID); err != nil {
		t.Fatalf("age comment: %v", err)
	}
	rec = edit(readerSess, `{"body":"too late"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expired edit status = %d, want 403", rec.Code)
	}
}

func TestCommentDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	author := testAccount(t, env.Accounts, models.RoleAuthor)
	reader := testAccount(t, env.Accounts, models.RoleReader)
	post := seedPublishedPost(t, env, author.ID)

	top, err := env.CommentStore.Create(post.ID, reader.ID, nil, "parent")
	if err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	if _, err := env.CommentStore.Create(post.ID, author.ID, &top.ID, "child"); err != nil {
		t.Fatalf("seed child: %v", err)
	}

	// The post's author may moderate any comment on their post.
	req := httptest.NewRequest(http.MethodDelete, "/api/comments/"+top.ID.String(), nil)
	req = withChiURLParamAndSession(req, "id", top.ID.String(),
		testSession(author.ID, author.Email, models.RoleAuthor))
	rec := httptest.NewRecorder()
	env.Comments.Delete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}

	count, err := env.CommentStore.CountByPost(post.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("comments after cascade delete = %d, want 0", count)
	}
}

func TestCommentDeleteForbiddenForStrangers(t *testing.T) {
	env := newTestEnv(t)
	author := testAccount(t, env.Accounts, models.RoleAuthor)
	reader := testAccount(t, env.Accounts, models.RoleReader)
	stranger := testAccount(t, env.Accounts, models.RoleReader)
	post := seedPublishedPost(t, env, author.ID)

	comment, err := env.CommentStore.Create(post.ID, reader.ID, nil, "hands off")
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/comments/"+comment.ID.String(), nil)
	req = withChiURLParamAndSession(req, "id", comment.ID.String(),
		testSession(stranger.ID, stranger.Email, models.RoleReader))
	rec := httptest.NewRecorder()
	env.Comments.Delete(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger delete status = %d, want 403", rec.Code)
	}
}
