package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"weblog/config"
	"weblog/forms"
	"weblog/models"
	"weblog/utils"
)

const cachePublishedList = "cache:posts:published"

// BlogController serves the public reader-facing pages: the published post
// list, the post detail with comments, and share-by-email.
type BlogController struct {
	db       *gorm.DB
	cfg      config.AppConfig
	renderer utils.Renderer
	mailer   utils.Mailer
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(db *gorm.DB, cfg config.AppConfig, renderer utils.Renderer, mailer utils.Mailer) *BlogController {
	return &BlogController{db: db, cfg: cfg, renderer: renderer, mailer: mailer}
}

// ListPosts renders the paginated list of published posts.
// Out-of-range or malformed page tokens are normalized, never rejected.
func (b *BlogController) ListPosts(ctx *gin.Context) {
	var posts []models.Post
	if !utils.CacheGetJSON(cachePublishedList, &posts) {
		var err error
		posts, err = models.PublishedPosts(b.db)
		if err != nil {
			b.serverError(ctx, err)
			return
		}
		utils.CacheSetJSON(cachePublishedList, posts, time.Hour)
	}

	pageNum := ctx.Query("page")
	page := utils.Paginate(posts, b.cfg.PageSize, pageNum)

	b.renderer.Render(ctx, http.StatusOK, "list.html", gin.H{
		"posts":    page.Items,
		"page_obj": page,
		"page_num": pageNum,
	})
}

// PostDetail renders one published post with its visible comments, and
// handles comment submissions against it.
func (b *BlogController) PostDetail(ctx *gin.Context) {
	post, ok := b.lookupByDate(ctx)
	if !ok {
		return
	}

	comments, err := models.ActiveComments(b.db, post)
	if err != nil {
		b.serverError(ctx, err)
		return
	}

	var newComment *models.Comment
	commentForm := &forms.CommentForm{}

	if ctx.Request.Method == http.MethodPost {
		if err := ctx.ShouldBind(commentForm); err != nil {
			b.serverError(ctx, err)
			return
		}
		if commentForm.Validate() {
			comment := commentForm.Comment()
			comment.PostID = post.ID
			if err := b.db.Create(&comment).Error; err != nil {
				b.serverError(ctx, err)
				return
			}
			newComment = &comment
		}
	}

	b.renderer.Render(ctx, http.StatusOK, "detail.html", gin.H{
		"post":         post,
		"comments":     comments,
		"new_comment":  newComment,
		"comment_form": commentForm,
	})
}

// SharePost renders the share-by-email form for one published post and
// handles its submission. Delivery is fire-and-forget: the handler only
// records apparent success in the sent flag.
func (b *BlogController) SharePost(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		b.notFound(ctx)
		return
	}

	post, err := models.PublishedPostByID(b.db, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.notFound(ctx)
			return
		}
		b.serverError(ctx, err)
		return
	}

	sent := false
	form := &forms.ShareForm{}

	if ctx.Request.Method == http.MethodPost {
		if err := ctx.ShouldBind(form); err != nil {
			b.serverError(ctx, err)
			return
		}
		if form.Validate() {
			postURL := absoluteURI(ctx, post.AbsoluteURL())
			subject := fmt.Sprintf("%s (%s) recommends you reading %q", form.Name, form.Email, post.Title)
			body := fmt.Sprintf("Read %q at %s\n\n%s's comments: %s", post.Title, postURL, form.Name, form.Comments)
			if err := b.mailer.Send(subject, body, b.cfg.MailFrom, []string{form.To}); err != nil {
				if utils.Sugar != nil {
					utils.Sugar.Warnf("share mail delivery failed post=%d err=%v", post.ID, err)
				}
			} else {
				sent = true
			}
		}
	}

	b.renderer.Render(ctx, http.StatusOK, "share.html", gin.H{
		"post": post,
		"form": form,
		"sent": sent,
	})
}

// lookupByDate resolves the year/month/day/slug path into one published post,
// rendering the 404 page when any component mismatches.
func (b *BlogController) lookupByDate(ctx *gin.Context) (*models.Post, bool) {
	year, errY := strconv.Atoi(ctx.Param("year"))
	month, errM := strconv.Atoi(ctx.Param("month"))
	day, errD := strconv.Atoi(ctx.Param("day"))
	slug := ctx.Param("slug")
	if errY != nil || errM != nil || errD != nil || slug == "" {
		b.notFound(ctx)
		return nil, false
	}

	post, err := models.PublishedPostByDate(b.db, year, month, day, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.notFound(ctx)
			return nil, false
		}
		b.serverError(ctx, err)
		return nil, false
	}
	return post, true
}

func (b *BlogController) notFound(ctx *gin.Context) {
	b.renderer.Render(ctx, http.StatusNotFound, "404.html", gin.H{})
	ctx.Abort()
}

func (b *BlogController) serverError(ctx *gin.Context, err error) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf("request failed path=%s err=%v", ctx.Request.URL.Path, err)
	}
	ctx.String(http.StatusInternalServerError, "server error")
	ctx.Abort()
}

// absoluteURI rebuilds the absolute URL of a path from the incoming request.
func absoluteURI(ctx *gin.Context, path string) string {
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, ctx.Request.Host, path)
}
