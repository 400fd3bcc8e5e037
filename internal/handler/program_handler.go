package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sia-project/sia-api/internal/service"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
	"github.com/sia-project/sia-api/pkg/response"
)

// ProgramHandler exposes program-wide progress reporting.
type ProgramHandler struct {
	progress *service.ProgressService
	exports  *service.ExportService
}

// NewProgramHandler creates a new handler.
func NewProgramHandler(progress *service.ProgressService, exports *service.ExportService) *ProgramHandler {
	return &ProgramHandler{progress: progress, exports: exports}
}

func minPercentQuery(c *gin.Context) (float64, error) {
	raw := c.DefaultQuery("minPercent", "0")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "minPercent must be numeric")
	}
	return value, nil
}

// Progress godoc
// @Summary Program credit progress report
// @Tags Programs
// @Produce json
// @Param code path string true "Program code"
// @Param minPercent query number false "Minimum completion percentage" default(0)
// @Param blueprintId query string false "Blueprint id (defaults to the program's curriculum)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{code}/progress [get]
func (h *ProgramHandler) Progress(c *gin.Context) {
	minPercent, err := minPercentQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.progress.ProgramReport(c.Request.Context(), c.Param("code"), minPercent, c.Query("blueprintId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ProgressExport godoc
// @Summary Export a program progress report
// @Tags Programs
// @Produce text/csv
// @Produce application/pdf
// @Param code path string true "Program code"
// @Param minPercent query number false "Minimum completion percentage" default(0)
// @Param blueprintId query string false "Blueprint id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /programs/{code}/progress/export [get]
func (h *ProgramHandler) ProgressExport(c *gin.Context) {
	minPercent, err := minPercentQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.progress.ProgramReport(c.Request.Context(), c.Param("code"), minPercent, c.Query("blueprintId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Progress(report, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
