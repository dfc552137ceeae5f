package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

type CertificateHandler struct {
	BaseHandler
	certificates services.CertificateService
}

func NewCertificateHandler(certificates services.CertificateService, logger utils.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler:  NewBaseHandler(logger),
		certificates: certificates,
	}
}

// ListCertificates returns the caller's certificates
// @Summary My certificates
// @Tags certificates
// @Produce json
// @Success 200 {array} models.Certificate
// @Router /certificates [get]
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	certs, err := h.certificates.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if certs == nil {
		certs = []*models.Certificate{}
	}

	c.JSON(http.StatusOK, certs)
}

// DownloadCertificate streams the certificate PDF as an attachment
// @Summary Download certificate
// @Tags certificates
// @Produce application/pdf
// @Param id path uint true "Certificate ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /certificates/{id}/download [get]
func (h *CertificateHandler) DownloadCertificate(c *gin.Context) {
	certID := h.parseIDParam(c, "id")
	if certID == 0 {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	file, err := h.certificates.Download(c.Request.Context(), certID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// ReissueCertificate issues the course certificate from the latest passing
// result when the automatic issuance did not go through
// @Summary Reissue certificate
// @Tags certificates
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Certificate
// @Failure 409 {object} ErrorResponse "No passing result"
// @Router /courses/{id}/certificate [post]
func (h *CertificateHandler) ReissueCertificate(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	cert, err := h.certificates.Reissue(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cert)
}
