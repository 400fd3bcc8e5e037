package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sia-project/sia-api/internal/blueprint"
	"github.com/sia-project/sia-api/internal/models"
	appErrors "github.com/sia-project/sia-api/pkg/errors"
)

type blueprintCatalog interface {
	List() ([]models.BlueprintMeta, error)
	Get(id string) (models.Blueprint, error)
	Register(id, name string, raw []byte) (models.BlueprintValidation, error)
	Simulate(raw []byte) models.BlueprintValidation
}

// BlueprintService fronts the curriculum catalog: listing, resolution by id
// or by program, registration and validation-only simulation.
type BlueprintService struct {
	catalog blueprintCatalog
	logger  *zap.Logger
}

// NewBlueprintService constructs a BlueprintService.
func NewBlueprintService(catalog blueprintCatalog, logger *zap.Logger) *BlueprintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlueprintService{catalog: catalog, logger: logger}
}

// List returns every available curriculum, the embedded one first.
func (s *BlueprintService) List() ([]models.BlueprintMeta, error) {
	metas, err := s.catalog.List()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blueprints")
	}
	return metas, nil
}

// Resolve returns the curriculum with the given id.
func (s *BlueprintService) Resolve(id string) (models.Blueprint, error) {
	bp, err := s.catalog.Get(id)
	if err != nil {
		if errors.Is(err, blueprint.ErrNotFound) {
			return models.Blueprint{}, appErrors.Clone(appErrors.ErrBlueprintNotFound, "")
		}
		return models.Blueprint{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blueprint")
	}
	return bp, nil
}

// ForProgram resolves the curriculum owning the given program code. The
// embedded curriculum takes precedence over registered ones.
func (s *BlueprintService) ForProgram(programCode string) (models.Blueprint, error) {
	programCode = strings.ToUpper(strings.TrimSpace(programCode))
	embedded := blueprint.Embedded()
	if strings.EqualFold(embedded.ProgramCode, programCode) {
		return embedded, nil
	}

	metas, err := s.catalog.List()
	if err != nil {
		return models.Blueprint{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blueprints")
	}
	for _, meta := range metas {
		if meta.ID == blueprint.EmbeddedID {
			continue
		}
		bp, err := s.catalog.Get(meta.ID)
		if err != nil {
			s.logger.Warn("skipping unreadable blueprint", zap.String("id", meta.ID), zap.Error(err))
			continue
		}
		if strings.EqualFold(bp.ProgramCode, programCode) {
			return bp, nil
		}
	}
	return models.Blueprint{}, appErrors.Clone(appErrors.ErrUnknownProgram, "")
}

// Register validates and stores a new curriculum document.
func (s *BlueprintService) Register(id, name string, raw []byte) (models.BlueprintValidation, error) {
	validation, err := s.catalog.Register(id, name, raw)
	if err != nil {
		if errors.Is(err, blueprint.ErrReservedID) {
			return validation, appErrors.Clone(appErrors.ErrValidation, "blueprint id is reserved")
		}
		return validation, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if !validation.Valid {
		return validation, appErrors.Clone(appErrors.ErrBlueprintInvalid, "")
	}
	s.logger.Info("blueprint registered", zap.String("id", id), zap.String("name", name))
	return validation, nil
}

// Simulate validates a curriculum document without persisting it.
func (s *BlueprintService) Simulate(raw []byte) models.BlueprintValidation {
	return s.catalog.Simulate(raw)
}
