package controllers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"weblog/config"
	"weblog/middleware"
	"weblog/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.Comment{}))
	return db
}

func seedPost(t *testing.T, db *gorm.DB, slug, status string, publish time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID: 1,
		Title:    "Post " + slug,
		Slug:     slug,
		Body:     "body of " + slug,
		Publish:  publish,
		Status:   status,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

// renderRecorder stands in for the view-rendering collaborator and captures
// the template identifier and named values each handler supplies.
type renderRecorder struct {
	status int
	name   string
	values gin.H
}

func (r *renderRecorder) Render(ctx *gin.Context, status int, name string, values gin.H) {
	r.status = status
	r.name = name
	r.values = values
	ctx.Status(status)
}

// mailRecorder stands in for the mail-delivery collaborator.
type sentMail struct {
	subject string
	body    string
	from    string
	to      []string
}

type mailRecorder struct {
	mails []sentMail
	err   error
}

func (m *mailRecorder) Send(subject, body, from string, to []string) error {
	if m.err != nil {
		return m.err
	}
	m.mails = append(m.mails, sentMail{subject: subject, body: body, from: from, to: to})
	return nil
}

// stubResolver stands in for the identity collaborator.
type stubResolver map[string]uint

func (s stubResolver) Resolve(_ context.Context, token string) (uint, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, middleware.ErrUnknownIdentity
}

func newBlogRouter(db *gorm.DB, rec *renderRecorder, mailer *mailRecorder) *gin.Engine {
	cfg := config.AppConfig{PageSize: 3, MailFrom: "admin@myblog.com"}
	r := gin.New()
	blog := NewBlogController(db, cfg, rec, mailer)
	r.GET("/", blog.ListPosts)
	r.GET("/:year/:month/:day/:slug", blog.PostDetail)
	r.POST("/:year/:month/:day/:slug", blog.PostDetail)
	r.GET("/share/:id", blog.SharePost)
	r.POST("/share/:id", blog.SharePost)
	return r
}

func newAuthorRouter(db *gorm.DB, resolver middleware.IdentityResolver) *gin.Engine {
	r := gin.New()
	author := NewAuthorController(db)
	api := r.Group("/api/v1")
	api.Use(middleware.AuthorRequired(resolver))
	api.POST("/posts", author.CreatePost)
	api.PUT("/posts/:id", author.UpdatePost)
	api.DELETE("/posts/:id", author.DeletePost)
	api.GET("/posts/mine", author.ListMyPosts)
	return r
}
