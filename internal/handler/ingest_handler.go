package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sia-project/sia-api/internal/service"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
	"github.com/sia-project/sia-api/pkg/response"
)

// IngestHandler exposes extract validation and batch import endpoints.
type IngestHandler struct {
	service *service.IngestService
}

// NewIngestHandler creates a new handler.
func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{service: svc}
}

func openUpload(c *gin.Context) (multipart.File, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart file field required")
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload")
	}
	return f, fileHeader.Filename, nil
}

// Validate godoc
// @Summary Validate an ARGOS extract
// @Description Run structural and semantic checks without importing
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "ARGOS .xlsx extract"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /imports/validate [post]
func (h *IngestHandler) Validate(c *gin.Context) {
	f, name, err := openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	report, err := h.service.ValidateExtract(c.Request.Context(), f, name, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Import godoc
// @Summary Import an ARGOS extract
// @Description Validate and merge an extract in one transaction
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "ARGOS .xlsx extract"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /imports [post]
func (h *IngestHandler) Import(c *gin.Context) {
	f, name, err := openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	summary, err := h.service.Import(c.Request.Context(), f, name, actorFromContext(c))
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrExtractInvalid.Code && summary != nil {
			response.ErrorWithDetail(c, err, summary.Report)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Recent godoc
// @Summary List recent imports
// @Description Latest import audit entries, newest first
// @Tags Imports
// @Produce json
// @Param limit query int false "Maximum entries" default(20)
// @Success 200 {object} response.Envelope
// @Router /imports/recent [get]
func (h *IngestHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	audits, err := h.service.RecentImports(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audits, nil)
}
