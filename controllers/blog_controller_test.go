package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weblog/forms"
	"weblog/models"
	"weblog/utils"
)

func TestListPostsShowsOnlyPublished(t *testing.T) {
	db := newTestDB(t)
	seedPost(t, db, "visible-one", models.StatusPublished, time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local))
	seedPost(t, db, "visible-two", models.StatusPublished, time.Date(2024, 2, 10, 9, 0, 0, 0, time.Local))
	seedPost(t, db, "hidden", models.StatusDraft, time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "list.html", rec.name)

	posts := rec.values["posts"].([]models.Post)
	require.Len(t, posts, 2)
	// newest publish date first
	assert.Equal(t, "visible-two", posts[0].Slug)
	assert.Equal(t, "visible-one", posts[1].Slug)
}

func TestListPostsPaginationFallback(t *testing.T) {
	db := newTestDB(t)
	for i := 1; i <= 10; i++ {
		seedPost(t, db, fmt.Sprintf("post-%d", i), models.StatusPublished,
			time.Date(2024, 1, i, 9, 0, 0, 0, time.Local))
	}

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	t.Run("garbage token falls back to first page", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?page=abc", nil))
		page := rec.values["page_obj"].(utils.Page[models.Post])
		assert.Equal(t, 1, page.Number)
		assert.Len(t, page.Items, 3)
	})

	t.Run("overflow token falls back to last page", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?page=99", nil))
		page := rec.values["page_obj"].(utils.Page[models.Post])
		assert.Equal(t, 4, page.Number)
		assert.Len(t, page.Items, 1)
	})

	t.Run("valid token returns that page", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?page=2", nil))
		page := rec.values["page_obj"].(utils.Page[models.Post])
		assert.Equal(t, 2, page.Number)
		assert.Len(t, page.Items, 3)
	})
}

func TestPostDetailRoundTrip(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "hello-world", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	// the generated address resolves back to the same post
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, post.AbsoluteURL(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "detail.html", rec.name)
	got := rec.values["post"].(*models.Post)
	assert.Equal(t, post.ID, got.ID)
	assert.Nil(t, rec.values["new_comment"])
}

func TestPostDetailDateMismatchIsNotFound(t *testing.T) {
	db := newTestDB(t)
	seedPost(t, db, "hello-world", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	for _, path := range []string{
		"/2023/1/15/hello-world",
		"/2024/2/15/hello-world",
		"/2024/1/16/hello-world",
		"/2024/1/15/other-slug",
		"/x/1/15/hello-world",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, "path %s", path)
		assert.Equal(t, "404.html", rec.name, "path %s", path)
	}
}

func TestPostDetailDraftIsNotFound(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "unready", models.StatusDraft,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, post.AbsoluteURL(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostDetailHidesInactiveComments(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "moderated", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	visible := &models.Comment{PostID: post.ID, Name: "a", Email: "a@example.com", Body: "fine", Active: true}
	hidden := &models.Comment{PostID: post.ID, Name: "b", Email: "b@example.com", Body: "spam", Active: true}
	require.NoError(t, db.Create(visible).Error)
	require.NoError(t, db.Create(hidden).Error)
	require.NoError(t, db.Model(hidden).Update("active", false).Error)

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, post.AbsoluteURL(), nil))

	comments := rec.values["comments"].([]models.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "fine", comments[0].Body)
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSubmitValidComment(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "open", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm(post.AbsoluteURL(), url.Values{
		"name":  {"Carol"},
		"email": {"carol@example.com"},
		"body":  {"great read"},
	}))

	assert.Equal(t, http.StatusOK, w.Code)

	newComment := rec.values["new_comment"].(*models.Comment)
	assert.Equal(t, post.ID, newComment.PostID)
	assert.True(t, newComment.Active)
	assert.False(t, newComment.CreatedAt.IsZero())

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitCommentWithEmptyBody(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "strict", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm(post.AbsoluteURL(), url.Values{
		"name":  {"Carol"},
		"email": {"carol@example.com"},
		"body":  {""},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, rec.values["new_comment"])

	form := rec.values["comment_form"].(*forms.CommentForm)
	assert.Contains(t, form.Errors(), "body")
	// user input preserved for re-display
	assert.Equal(t, "Carol", form.Name)

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestShareFormPage(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "shareable", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/share/%d", post.ID), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "share.html", rec.name)
	assert.Equal(t, false, rec.values["sent"])
}

func TestShareUnknownOrDraftPostIsNotFound(t *testing.T) {
	db := newTestDB(t)
	draft := seedPost(t, db, "unshared", models.StatusDraft,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	r := newBlogRouter(db, rec, &mailRecorder{})

	for _, target := range []string{"/share/9999", fmt.Sprintf("/share/%d", draft.ID), "/share/abc"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, "target %s", target)
	}
}

func TestShareValidSubmissionSendsOneMail(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "recommended", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	mailer := &mailRecorder{}
	r := newBlogRouter(db, rec, mailer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm(fmt.Sprintf("/share/%d", post.ID), url.Values{
		"name":     {"Alice"},
		"email":    {"alice@example.com"},
		"to":       {"bob@example.com"},
		"comments": {"you will like this"},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, rec.values["sent"])

	require.Len(t, mailer.mails, 1)
	mail := mailer.mails[0]
	assert.Contains(t, mail.subject, "Alice")
	assert.Contains(t, mail.subject, "alice@example.com")
	assert.Contains(t, mail.subject, post.Title)
	assert.Contains(t, mail.body, post.AbsoluteURL())
	assert.Contains(t, mail.body, "you will like this")
	assert.Equal(t, "admin@myblog.com", mail.from)
	assert.Equal(t, []string{"bob@example.com"}, mail.to)
}

func TestShareInvalidSubmissionSendsNothing(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "guarded", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	mailer := &mailRecorder{}
	r := newBlogRouter(db, rec, mailer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm(fmt.Sprintf("/share/%d", post.ID), url.Values{
		"name":  {"Alice"},
		"email": {"not-an-address"},
		"to":    {"bob@example.com"},
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, rec.values["sent"])
	assert.Empty(t, mailer.mails)

	form := rec.values["form"].(*forms.ShareForm)
	assert.Contains(t, form.Errors(), "email")
}

func TestShareDeliveryFailureLeavesSentFalse(t *testing.T) {
	db := newTestDB(t)
	post := seedPost(t, db, "flaky", models.StatusPublished,
		time.Date(2024, 1, 15, 14, 30, 0, 0, time.Local))

	rec := &renderRecorder{}
	mailer := &mailRecorder{err: fmt.Errorf("smtp down")}
	r := newBlogRouter(db, rec, mailer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, postForm(fmt.Sprintf("/share/%d", post.ID), url.Values{
		"name":  {"Alice"},
		"email": {"alice@example.com"},
		"to":    {"bob@example.com"},
	}))

	// fire and forget: the page still renders, only the flag stays unset
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, rec.values["sent"])
}
