package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goblog-api/internal/app"
	"goblog-api/internal/transport/http/view"
)

type HomeHandler struct {
	blogService *app.BlogService
	title       string
}

func NewHomeHandler(blogService *app.BlogService, title string) *HomeHandler {
	return &HomeHandler{blogService: blogService, title: title}
}

func (h *HomeHandler) Index(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	if page.Limit == 0 {
		page.Limit = app.MaxPageLimit
	}
	posts, err := h.blogService.List(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "could not load posts")
		return
	}
	c.HTML(http.StatusOK, view.HomeTemplate, gin.H{
		"Title": h.title,
		"Posts": posts,
	})
}

// CreateArticlePage renders the article form for the signed-in user.
func (h *HomeHandler) CreateArticlePage(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, view.CreateArticleTemplate, gin.H{
		"Title": h.title,
		"User":  user,
	})
}
