package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArtyomSF99/url-shortener/internal/middleware"
	"github.com/ArtyomSF99/url-shortener/internal/models"
	"github.com/ArtyomSF99/url-shortener/internal/service"
)

type ShortenerController struct {
	urlService service.URLService
}

func NewShortenerController(urlService service.URLService) *ShortenerController {
	return &ShortenerController{
		urlService: urlService,
	}
}

// currentUserID returns the user set by the auth middleware, answering
// 401 itself when there is none.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "User ID not found in token",
			Code:  models.CodeUnauthenticated,
		})
		c.Abort()
		return "", false
	}
	return userID, true
}

// CreateShortURL handles POST /api/v1/url
func (sc *ShortenerController) CreateShortURL(c *gin.Context) {
	var req models.CreateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	url, err := sc.urlService.CreateShortURL(c.Request.Context(), &req, &userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, url)
}

// ListURLs handles GET /api/v1/url
func (sc *ShortenerController) ListURLs(c *gin.Context) {
	urls, err := sc.urlService.ListAll(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, urls)
}

// ListMyLinks handles GET /api/v1/url/my-links
func (sc *ShortenerController) ListMyLinks(c *gin.Context) {
	var query models.ListURLsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		validationError(c, err)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, err := sc.urlService.ListUserURLs(c.Request.Context(), userID, query.Options())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateURL handles PATCH /api/v1/url/:id - renames the slug
func (sc *ShortenerController) UpdateURL(c *gin.Context) {
	var req models.UpdateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	url, err := sc.urlService.RenameSlug(c.Request.Context(), c.Param("id"), userID, req.Slug)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, url)
}

// RedirectToURL handles GET /:slug
func (sc *ShortenerController) RedirectToURL(c *gin.Context) {
	originalURL, err := sc.urlService.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}
