package blueprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sia-project/sia-api/internal/models"
)

var (
	// ErrNotFound is returned when no registered curriculum has the given id.
	ErrNotFound = errors.New("blueprint not found")
	// ErrReservedID is returned when a registration collides with EmbeddedID.
	ErrReservedID = errors.New("blueprint id is reserved")
)

const indexFile = "index.json"

// Catalog is a file-backed curriculum store: one JSON document per
// registered curriculum plus an index.json with the id/name/file triples.
// The embedded curriculum is served from memory and never touches the
// directory.
type Catalog struct {
	dir string
	mu  sync.Mutex
}

// NewCatalog returns a catalog rooted at dir. The directory is created
// lazily on first registration.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// List returns the embedded curriculum followed by every indexed one.
func (c *Catalog) List() ([]models.BlueprintMeta, error) {
	metas, err := c.readIndex()
	if err != nil {
		return nil, err
	}
	out := make([]models.BlueprintMeta, 0, len(metas)+1)
	out = append(out, models.BlueprintMeta{ID: EmbeddedID, Name: embeddedISOF.Name})
	out = append(out, metas...)
	return out, nil
}

// Get resolves a curriculum by id, the embedded one included.
func (c *Catalog) Get(id string) (models.Blueprint, error) {
	id = strings.TrimSpace(id)
	if id == EmbeddedID {
		return Embedded(), nil
	}
	metas, err := c.readIndex()
	if err != nil {
		return models.Blueprint{}, err
	}
	for _, meta := range metas {
		if meta.ID != id {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(c.dir, meta.File))
		if err != nil {
			return models.Blueprint{}, fmt.Errorf("read blueprint %s: %w", id, err)
		}
		var bp models.Blueprint
		if err := json.Unmarshal(raw, &bp); err != nil {
			return models.Blueprint{}, fmt.Errorf("decode blueprint %s: %w", id, err)
		}
		bp.ID = meta.ID
		return bp, nil
	}
	return models.Blueprint{}, ErrNotFound
}

// Simulate validates a curriculum document without persisting anything.
func (c *Catalog) Simulate(raw []byte) models.BlueprintValidation {
	var bp models.Blueprint
	if err := json.Unmarshal(raw, &bp); err != nil {
		return models.BlueprintValidation{
			Valid:  false,
			Errors: []string{fmt.Sprintf("invalid JSON document: %v", err)},
		}
	}
	return Validate(bp)
}

// Register validates the document and, when valid, stores it under
// <id>.json and rewrites the index. An existing id is replaced.
func (c *Catalog) Register(id, name string, raw []byte) (models.BlueprintValidation, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return models.BlueprintValidation{}, fmt.Errorf("blueprint id must not be empty")
	}
	if name == "" {
		return models.BlueprintValidation{}, fmt.Errorf("blueprint name must not be empty")
	}
	if id == EmbeddedID {
		return models.BlueprintValidation{}, ErrReservedID
	}
	if id != filepath.Base(id) || strings.ContainsAny(id, `/\`) {
		return models.BlueprintValidation{}, fmt.Errorf("blueprint id %q must not contain path separators", id)
	}

	validation := c.Simulate(raw)
	if !validation.Valid {
		return validation, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return validation, fmt.Errorf("create catalog dir: %w", err)
	}
	file := id + ".json"
	if err := os.WriteFile(filepath.Join(c.dir, file), raw, 0o644); err != nil {
		return validation, fmt.Errorf("write blueprint %s: %w", id, err)
	}

	metas, err := c.readIndex()
	if err != nil {
		return validation, err
	}
	kept := metas[:0]
	for _, meta := range metas {
		if meta.ID != id {
			kept = append(kept, meta)
		}
	}
	kept = append(kept, models.BlueprintMeta{ID: id, Name: name, File: file})
	if err := c.writeIndex(kept); err != nil {
		return validation, err
	}
	return validation, nil
}

func (c *Catalog) readIndex() ([]models.BlueprintMeta, error) {
	raw, err := os.ReadFile(filepath.Join(c.dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read blueprint index: %w", err)
	}
	var metas []models.BlueprintMeta
	if err := json.Unmarshal(raw, &metas); err != nil {
		return nil, fmt.Errorf("decode blueprint index: %w", err)
	}
	return metas, nil
}

func (c *Catalog) writeIndex(metas []models.BlueprintMeta) error {
	raw, err := json.MarshalIndent(metas, "", "  ")
	if err != nil {
		return fmt.Errorf("encode blueprint index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, indexFile), raw, 0o644); err != nil {
		return fmt.Errorf("write blueprint index: %w", err)
	}
	return nil
}

// Validate runs the structural checks on a parsed curriculum: identity
// fields present, blocks and courses well formed, and the course credit sum
// equal to the declared total.
func Validate(bp models.Blueprint) models.BlueprintValidation {
	var errs []string

	if strings.TrimSpace(bp.ProgramCode) == "" {
		errs = append(errs, "program_code must be a non-empty string")
	}
	if strings.TrimSpace(bp.Name) == "" {
		errs = append(errs, "name must be a non-empty string")
	}
	if bp.TotalCredits <= 0 {
		errs = append(errs, "total_credits must be a positive integer")
	}
	if len(bp.Blocks) == 0 {
		errs = append(errs, "blocks must be a non-empty list")
		return models.BlueprintValidation{Valid: false, Errors: errs}
	}

	creditSum := 0
	courseCount := 0
	periodSet := make(map[int]struct{})

	for i, block := range bp.Blocks {
		if block.Period <= 0 {
			errs = append(errs, fmt.Sprintf("block #%d has an invalid period", i+1))
		} else {
			periodSet[block.Period] = struct{}{}
		}
		if len(block.Courses) == 0 {
			errs = append(errs, fmt.Sprintf("block %d must have a non-empty course list", block.Period))
			continue
		}
		for _, course := range block.Courses {
			if len(course.Codes) == 0 {
				errs = append(errs, fmt.Sprintf("course %q in block %d has no codes", course.Name, block.Period))
			}
			for _, code := range course.Codes {
				if strings.TrimSpace(code) == "" {
					errs = append(errs, fmt.Sprintf("course %q in block %d has a blank code", course.Name, block.Period))
				}
			}
			if strings.TrimSpace(course.Name) == "" {
				errs = append(errs, fmt.Sprintf("a course in block %d has no name", block.Period))
			}
			if course.Credits <= 0 {
				errs = append(errs, fmt.Sprintf("course %q in block %d has invalid credits", course.Name, block.Period))
			} else {
				creditSum += course.Credits
				courseCount++
			}
		}
	}

	if creditSum != bp.TotalCredits {
		errs = append(errs, fmt.Sprintf(
			"course credit sum (%d) does not match total_credits (%d)", creditSum, bp.TotalCredits))
	}

	periods := make([]int, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Ints(periods)

	return models.BlueprintValidation{
		Valid:  len(errs) == 0,
		Errors: errs,
		Summary: models.BlueprintSummary{
			ProgramCode:     bp.ProgramCode,
			DeclaredCredits: bp.TotalCredits,
			CourseCreditSum: creditSum,
			CourseCount:     courseCount,
			Periods:         periods,
		},
	}
}
