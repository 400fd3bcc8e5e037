package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sia-project/sia-api/internal/models"
)

// CrossrefService maps a curriculum blueprint against a student's persisted
// enrollment history. It is pure: inputs are never mutated and the same
// inputs always produce the same classified blocks.
type CrossrefService struct {
	transferPrefix string
	logger         *zap.Logger
}

// NewCrossrefService constructs a CrossrefService. An empty transferPrefix
// falls back to the default.
func NewCrossrefService(transferPrefix string, logger *zap.Logger) *CrossrefService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CrossrefService{transferPrefix: transferPrefix, logger: logger}
}

// Map classifies every blueprint course against the history. Blocks come
// back in blueprint order; history rows whose code matches no blueprint
// course are ignored.
func (s *CrossrefService) Map(bp models.Blueprint, history []models.HistoryRow) []models.ClassifiedBlock {
	index := indexHistory(history)

	blocks := make([]models.ClassifiedBlock, 0, len(bp.Blocks))
	for _, block := range bp.Blocks {
		courses := make([]models.ClassifiedCourse, 0, len(block.Courses))
		for _, course := range block.Courses {
			aliases := normalizeAliases(course.Codes)
			display := ""
			if len(aliases) > 0 {
				display = aliases[0]
			}

			var matches []models.HistoryRow
			for _, alias := range aliases {
				matches = append(matches, index[alias]...)
			}

			classified := models.ClassifiedCourse{
				Code:    display,
				Name:    course.Name,
				Credits: course.Credits,
				State:   models.CourseStatePending,
			}
			if best, ok := s.consolidate(matches); ok {
				classified.State = s.classifyRow(best)
				classified.Grade = best.Grade
				term := best.TermID
				classified.TermID = &term
			}
			courses = append(courses, classified)
		}
		blocks = append(blocks, models.ClassifiedBlock{Period: block.Period, Courses: courses})
	}
	return blocks
}

// indexHistory groups rows by upper-cased course code. Blank codes are
// unmatchable and dropped.
func indexHistory(history []models.HistoryRow) map[string][]models.HistoryRow {
	index := make(map[string][]models.HistoryRow, len(history))
	for _, row := range history {
		code := strings.ToUpper(strings.TrimSpace(row.Code))
		if code == "" {
			continue
		}
		index[code] = append(index[code], row)
	}
	return index
}

func normalizeAliases(codes models.CodeList) []string {
	aliases := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			aliases = append(aliases, code)
		}
	}
	return aliases
}

// classifyRow states one enrollment: transfer identifiers outrank grading,
// then the passing threshold splits approved from failed. A missing grade
// counts as zero.
func (s *CrossrefService) classifyRow(row models.HistoryRow) models.CourseState {
	if models.MatchesTransferPrefix(s.transferPrefix, row.CourseID) {
		return models.CourseStateTransferred
	}
	grade := 0.0
	if row.Grade != nil {
		grade = *row.Grade
	}
	if grade >= models.PassingGrade {
		return models.CourseStateApproved
	}
	return models.CourseStateFailed
}

// consolidate picks the winning enrollment under the total order
// (state priority, term id): the strongest state wins, and within equal
// states the lexicographically greatest term does.
func (s *CrossrefService) consolidate(rows []models.HistoryRow) (models.HistoryRow, bool) {
	if len(rows) == 0 {
		return models.HistoryRow{}, false
	}
	best := rows[0]
	bestPriority := s.classifyRow(best).Priority()
	for _, row := range rows[1:] {
		priority := s.classifyRow(row).Priority()
		if priority > bestPriority || (priority == bestPriority && row.TermID > best.TermID) {
			best = row
			bestPriority = priority
		}
	}
	return best, true
}
