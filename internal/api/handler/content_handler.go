package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/planwise/business-planner/internal/core/domain"
	"github.com/planwise/business-planner/internal/core/service"
)

// ShareReader resolves public links.
type ShareReader interface {
	Get(ctx context.Context, id string) (*domain.SharedLink, error)
}

// BlogReader serves the blog.
type BlogReader interface {
	List(ctx context.Context, category string) ([]domain.BlogPost, error)
	Get(ctx context.Context, id string) (*domain.BlogPost, error)
}

// Testimonials accepts and lists public testimonials.
type Testimonials interface {
	Submit(ctx context.Context, in service.TestimonialInput) (service.SubmissionResult, error)
	ListApproved(ctx context.Context) ([]domain.Testimonial, error)
}

// Suggester proposes short ideas for a keyword.
type Suggester interface {
	Suggest(ctx context.Context, keyword string) ([]string, error)
}

// ContentHandler serves the public read surfaces: shared links, the blog,
// testimonials, and keyword suggestions.
type ContentHandler struct {
	shares       ShareReader
	blog         BlogReader
	testimonials Testimonials
	suggester    Suggester
}

func NewContentHandler(shares ShareReader, blog BlogReader, testimonials Testimonials, suggester Suggester) *ContentHandler {
	return &ContentHandler{shares: shares, blog: blog, testimonials: testimonials, suggester: suggester}
}

// GetShare handles GET /v1/shares/:id.
//
// @Summary      Read a shared plan
// @Tags         content
// @Produce      json
// @Param        id   path      string  true  "Share token"
// @Success      200  {object}  domain.SharedLink
// @Failure      404  {object}  errorResponse
// @Router       /v1/shares/{id} [get]
func (h *ContentHandler) GetShare(c echo.Context) error {
	link, err := h.shares.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, link)
}

// ListBlog handles GET /v1/blog.
//
// @Summary      List blog posts, newest first
// @Tags         content
// @Produce      json
// @Param        category  query     string  false  "Category filter"
// @Success      200       {array}   domain.BlogPost
// @Router       /v1/blog [get]
func (h *ContentHandler) ListBlog(c echo.Context) error {
	posts, err := h.blog.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// GetBlogPost handles GET /v1/blog/:id.
//
// @Summary      Read a blog post
// @Tags         content
// @Produce      json
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  domain.BlogPost
// @Failure      404  {object}  errorResponse
// @Router       /v1/blog/{id} [get]
func (h *ContentHandler) GetBlogPost(c echo.Context) error {
	post, err := h.blog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// ListTestimonials handles GET /v1/testimonials.
//
// @Summary      List approved testimonials
// @Tags         content
// @Produce      json
// @Success      200  {array}  domain.Testimonial
// @Router       /v1/testimonials [get]
func (h *ContentHandler) ListTestimonials(c echo.Context) error {
	list, err := h.testimonials.ListApproved(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// SubmitTestimonial handles POST /v1/testimonials. A moderation rejection is
// a normal 200 response with outcome "rejected".
//
// @Summary      Submit a testimonial
// @Tags         content
// @Accept       json
// @Produce      json
// @Param        body  body      service.TestimonialInput  true  "Testimonial"
// @Success      200   {object}  testimonialResponse
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse  "Moderation unavailable"
// @Router       /v1/testimonials [post]
func (h *ContentHandler) SubmitTestimonial(c echo.Context) error {
	var req service.TestimonialInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.testimonials.Submit(c.Request().Context(), req)
	if err != nil {
		return err
	}
	resp := testimonialResponse{Outcome: res.Outcome}
	if res.Outcome == domain.ModerationAccepted {
		resp.Testimonial = &res.Testimonial
	}
	return c.JSON(http.StatusOK, resp)
}

// Suggestions handles GET /v1/suggestions.
//
// @Summary      Keyword suggestions
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Param        keyword  query     string  true  "Keyword"
// @Success      200      {object}  suggestionsResponse
// @Failure      400      {object}  errorResponse
// @Failure      502      {object}  errorResponse
// @Router       /v1/suggestions [get]
func (h *ContentHandler) Suggestions(c echo.Context) error {
	keyword := c.QueryParam("keyword")
	list, err := h.suggester.Suggest(c.Request().Context(), keyword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, suggestionsResponse{Keyword: keyword, Suggestions: list})
}
