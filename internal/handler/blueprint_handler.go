package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-project/sia-api/internal/service"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
	"github.com/sia-project/sia-api/pkg/response"
)

// BlueprintHandler exposes the curriculum catalog.
type BlueprintHandler struct {
	service *service.BlueprintService
}

// NewBlueprintHandler creates a new handler.
func NewBlueprintHandler(svc *service.BlueprintService) *BlueprintHandler {
	return &BlueprintHandler{service: svc}
}

func readBlueprintUpload(c *gin.Context) ([]byte, error) {
	f, _, err := openUpload(c)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload")
	}
	return raw, nil
}

// List godoc
// @Summary List curricula
// @Tags Blueprints
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blueprints [get]
func (h *BlueprintHandler) List(c *gin.Context) {
	metas, err := h.service.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metas, nil)
}

// Get godoc
// @Summary Get one curriculum
// @Tags Blueprints
// @Produce json
// @Param id path string true "Blueprint id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /blueprints/{id} [get]
func (h *BlueprintHandler) Get(c *gin.Context) {
	bp, err := h.service.Resolve(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bp, nil)
}

// Register godoc
// @Summary Register a curriculum
// @Description Validate a curriculum JSON document and store it in the catalog
// @Tags Blueprints
// @Accept multipart/form-data
// @Produce json
// @Param id formData string true "Blueprint id"
// @Param name formData string true "Display name"
// @Param file formData file true "Curriculum JSON document"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /blueprints [post]
func (h *BlueprintHandler) Register(c *gin.Context) {
	raw, err := readBlueprintUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	validation, err := h.service.Register(c.PostForm("id"), c.PostForm("name"), raw)
	if err != nil {
		response.ErrorWithDetail(c, err, validation)
		return
	}
	response.JSON(c, http.StatusCreated, validation, nil)
}

// Simulate godoc
// @Summary Validate a curriculum without storing it
// @Tags Blueprints
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Curriculum JSON document"
// @Success 200 {object} response.Envelope
// @Router /blueprints/simulate [post]
func (h *BlueprintHandler) Simulate(c *gin.Context) {
	raw, err := readBlueprintUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.Simulate(raw), nil)
}
