package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sia-project/sia-api/internal/models"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
	"github.com/sia-project/sia-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered document ready to stream.
type ExportFile struct {
	Content     []byte
	ContentType string
	FileName    string
}

// ExportService maps curriculum views and program reports onto tabular
// datasets and renders them as CSV or PDF.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Curriculum renders a classified curriculum sheet.
func (s *ExportService) Curriculum(view *CurriculumView, format string) (*ExportFile, error) {
	dataset := export.Dataset{
		Headers:  []string{"PERIODO", "CODIGO", "CURSO", "CREDITOS", "ESTADO", "NOTA", "PERIODO_CURSADO"},
		StateKey: "ESTADO",
	}
	for _, block := range view.Blocks {
		for _, course := range block.Courses {
			row := map[string]string{
				"PERIODO":  strconv.Itoa(block.Period),
				"CODIGO":   course.Code,
				"CURSO":    course.Name,
				"CREDITOS": strconv.Itoa(course.Credits),
				"ESTADO":   string(course.State),
			}
			if course.Grade != nil {
				row["NOTA"] = fmt.Sprintf("%.1f", *course.Grade)
			}
			if course.TermID != nil {
				row["PERIODO_CURSADO"] = *course.TermID
			}
			dataset.Rows = append(dataset.Rows, row)
		}
	}

	title := fmt.Sprintf("Malla de %s (%s)", view.Student.FullName, view.Student.ID)
	name := fmt.Sprintf("curriculum_%s", view.Student.ID)
	return s.render(dataset, title, name, format)
}

// Progress renders a program credit-progress report.
func (s *ExportService) Progress(report *models.ProgramProgressReport, format string) (*ExportFile, error) {
	dataset := export.Dataset{
		Headers: []string{"ID_ESTUDIANTE", "NOMBRE", "APROBADOS", "TRANSFERIDOS", "PERDIDOS", "PENDIENTES", "PORCENTAJE"},
	}
	for _, student := range report.Filtered {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID_ESTUDIANTE": student.StudentID,
			"NOMBRE":        student.StudentName,
			"APROBADOS":     strconv.Itoa(student.Totals.Approved),
			"TRANSFERIDOS":  strconv.Itoa(student.Totals.Transferred),
			"PERDIDOS":      strconv.Itoa(student.Totals.Failed),
			"PENDIENTES":    strconv.Itoa(student.Totals.Pending),
			"PORCENTAJE":    fmt.Sprintf("%.2f", student.PercentComplete),
		})
	}

	title := fmt.Sprintf("Avance de créditos %s (mínimo %.0f%%)", report.ProgramCode, report.MinPercent)
	name := fmt.Sprintf("progress_%s", strings.ToLower(report.ProgramCode))
	return s.render(dataset, title, name, format)
}

func (s *ExportService) render(dataset export.Dataset, title, name, format string) (*ExportFile, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Content: content, ContentType: "text/csv", FileName: name + ".csv"}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", FileName: name + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
