package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goblog-api/internal/app"
	"goblog-api/internal/transport/http/response"
)

type BlogHandler struct {
	blogService *app.BlogService
}

type CreateBlogRequest struct {
	Title string `json:"title" form:"title" binding:"required,max=256"`
	Body  string `json:"body" form:"body"`
}

// EditBlogRequest is the form submitted by the edit and new article pages;
// both fields are required.
type EditBlogRequest struct {
	Title string `form:"title" json:"title" binding:"required,max=256"`
	Body  string `form:"body" json:"body" binding:"required"`
}

// PatchBlogRequest changes only the fields present in the JSON body.
type PatchBlogRequest struct {
	Title *string `json:"title" binding:"omitempty,max=256"`
	Body  *string `json:"body"`
}

func NewBlogHandler(blogService *app.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

func (h *BlogHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateBlogRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	post, err := h.blogService.Create(c.Request.Context(), app.CreatePostInput{
		Title: req.Title,
		Body:  req.Body,
	}, user)
	if err != nil {
		writeServiceError(c, err, "create blog failed")
		return
	}
	response.OK(c, post)
}

// CreateArticle handles the article form; both fields are required.
func (h *BlogHandler) CreateArticle(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req EditBlogRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "title and body are required")
		return
	}

	post, err := h.blogService.Create(c.Request.Context(), app.CreatePostInput{
		Title: req.Title,
		Body:  req.Body,
	}, user)
	if err != nil {
		writeServiceError(c, err, "create article failed")
		return
	}
	response.OKMessage(c, "Article created successfully", post)
}

func (h *BlogHandler) List(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	posts, err := h.blogService.List(c.Request.Context(), page)
	if err != nil {
		writeServiceError(c, err, "list blogs failed")
		return
	}
	response.OK(c, posts)
}

func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	post, err := h.blogService.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "get blog failed")
		return
	}
	response.OK(c, post)
}

func (h *BlogHandler) Edit(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req EditBlogRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "title and body are required")
		return
	}

	post, err := h.blogService.Update(c.Request.Context(), id, app.BlogPatch{
		Title: &req.Title,
		Body:  &req.Body,
	}, user)
	if err != nil {
		writeServiceError(c, err, "edit blog failed")
		return
	}
	response.OK(c, post)
}

func (h *BlogHandler) Patch(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req PatchBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	post, err := h.blogService.Update(c.Request.Context(), id, app.BlogPatch{
		Title: req.Title,
		Body:  req.Body,
	}, user)
	if err != nil {
		writeServiceError(c, err, "update blog failed")
		return
	}
	response.OK(c, post)
}

func (h *BlogHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	events, err := h.blogService.History(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "list blog history failed")
		return
	}
	response.OK(c, events)
}
