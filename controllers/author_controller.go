package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"weblog/middleware"
	"weblog/models"
	"weblog/utils"
)

// AuthorController exposes the JSON authoring API. Every operation requires
// an author reference resolved by the identity collaborator.
type AuthorController struct {
	db *gorm.DB
}

// NewAuthorController creates a new AuthorController instance.
func NewAuthorController(db *gorm.DB) *AuthorController {
	return &AuthorController{db: db}
}

type postRequest struct {
	Title   string     `json:"title" binding:"required,min=1,max=250"`
	Body    string     `json:"body" binding:"required"`
	Slug    string     `json:"slug" binding:"omitempty,max=250"`
	Publish *time.Time `json:"publish"`
	Status  string     `json:"status" binding:"omitempty,oneof=draft published"`
}

// CreatePost creates a post owned by the resolved author. The slug is
// derived from the title when not supplied.
func (a *AuthorController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	authorID, ok := getAuthorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	postSlug := strings.TrimSpace(req.Slug)
	if postSlug == "" {
		postSlug = slug.Make(title)
	}

	post := models.Post{
		AuthorID: authorID,
		Title:    title,
		Slug:     postSlug,
		Body:     utils.Sanitize(req.Body),
		Status:   req.Status,
	}
	if req.Publish != nil {
		post.Publish = *req.Publish
	}

	if err := a.db.Create(&post).Error; err != nil {
		if errors.Is(err, models.ErrDuplicateSlug) {
			utils.Error(ctx, http.StatusConflict, 40910, "slug already used for this publish date")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"post": post})
}

// UpdatePost lets the owning author modify a post.
func (a *AuthorController) UpdatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	post, ok := a.ownedPost(ctx)
	if !ok {
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "title cannot be empty")
		return
	}

	post.Title = title
	post.Body = utils.Sanitize(req.Body)
	if req.Slug != "" {
		post.Slug = strings.TrimSpace(req.Slug)
	}
	if req.Publish != nil {
		post.Publish = *req.Publish
	}
	if req.Status != "" {
		post.Status = req.Status
	}

	if err := a.db.Save(post).Error; err != nil {
		if errors.Is(err, models.ErrDuplicateSlug) {
			utils.Error(ctx, http.StatusConflict, 40911, "slug already used for this publish date")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to update post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost lets the owning author delete a post; its comments cascade away
// through the foreign key.
func (a *AuthorController) DeletePost(ctx *gin.Context) {
	post, ok := a.ownedPost(ctx)
	if !ok {
		return
	}

	if err := a.db.Delete(post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ListMyPosts returns the resolved author's posts in any status, paginated.
func (a *AuthorController) ListMyPosts(ctx *gin.Context) {
	authorID, ok := getAuthorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	posts, err := models.PostsByAuthor(a.db, authorID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list posts")
		return
	}

	page := utils.Paginate(posts, parsePageSize(ctx.Query("page_size")), ctx.Query("page"))
	utils.Success(ctx, gin.H{
		"items": page.Items,
		"pagination": gin.H{
			"page":        page.Number,
			"total":       page.Count,
			"total_pages": page.TotalPages,
		},
	})
}

// ownedPost loads the post addressed by the :id path parameter and checks
// the resolved author owns it.
func (a *AuthorController) ownedPost(ctx *gin.Context) (*models.Post, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return nil, false
	}

	var post models.Post
	if err := a.db.First(&post, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load post")
		return nil, false
	}

	authorID, ok := getAuthorID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}
	if post.AuthorID != authorID {
		utils.Error(ctx, http.StatusForbidden, 40310, "you can only modify your own posts")
		return nil, false
	}
	return &post, true
}

func getAuthorID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextAuthorIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func parsePageSize(raw string) int {
	if s, err := strconv.Atoi(raw); err == nil && s > 0 && s <= 100 {
		return s
	}
	return 10
}
