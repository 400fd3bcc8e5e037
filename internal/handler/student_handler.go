package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sia-project/sia-api/internal/models"
	"github.com/sia-project/sia-api/internal/service"
	"github.com/sia-project/sia-api/pkg/response"
)

// StudentHandler exposes student listing, history and curriculum views.
type StudentHandler struct {
	students *service.StudentService
	progress *service.ProgressService
	exports  *service.ExportService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(students *service.StudentService, progress *service.ProgressService, exports *service.ExportService) *StudentHandler {
	return &StudentHandler{students: students, progress: progress, exports: exports}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Name or id fragment"
// @Param programCode query string false "Program code"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = c.Query("search")
	filter.ProgramCode = c.Query("programCode")
	filter.SortBy = c.Query("sortBy")
	filter.SortOrder = c.Query("sortOrder")
	filter.Page = intQuery(c, "page", 1)
	filter.PageSize = intQuery(c, "pageSize", 20)

	students, total, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, models.NewPagination(filter.Page, filter.PageSize, total))
}

// Curriculum godoc
// @Summary Classified curriculum of one student
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Param blueprintId query string false "Blueprint id (defaults to the student's program)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/curriculum [get]
func (h *StudentHandler) Curriculum(c *gin.Context) {
	view, err := h.progress.StudentCurriculum(c.Request.Context(), c.Param("id"), c.Query("blueprintId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// History godoc
// @Summary Persisted enrollment history of one student
// @Tags Students
// @Produce json
// @Param id path string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/history [get]
func (h *StudentHandler) History(c *gin.Context) {
	history, err := h.progress.StudentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// CurriculumExport godoc
// @Summary Export a classified curriculum sheet
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student id"
// @Param blueprintId query string false "Blueprint id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /students/{id}/curriculum/export [get]
func (h *StudentHandler) CurriculumExport(c *gin.Context) {
	view, err := h.progress.StudentCurriculum(c.Request.Context(), c.Param("id"), c.Query("blueprintId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Curriculum(view, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
