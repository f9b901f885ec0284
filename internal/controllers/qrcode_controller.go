package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/ArtyomSF99/url-shortener/internal/service"
)

const qrCodeSize = 256

type QRCodeController struct {
	urlService service.URLService
	baseURL    string
}

func NewQRCodeController(urlService service.URLService, baseURL string) *QRCodeController {
	return &QRCodeController{
		urlService: urlService,
		baseURL:    baseURL,
	}
}

// GenerateQRCode handles GET /api/v1/qrcode/:slug - returns a PNG encoding
// the short link. Looking the slug up does not count as a visit.
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	url, err := qc.urlService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}

	pngData, err := qrcode.Encode(qc.baseURL+"/"+url.Slug, qrcode.Medium, qrCodeSize)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=qrcode.png")
	c.Data(http.StatusOK, "image/png", pngData)
}
