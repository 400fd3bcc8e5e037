package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sia-project/sia-api/internal/models"
)

// AuditRepository reads and appends import audit entries outside of a merge
// transaction (validation-only runs, history listing).
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends one audit entry.
func (r *AuditRepository) Insert(ctx context.Context, audit *models.ImportAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO import_audits (id, actor, action, file_name, total, new, updated, errors, transfers, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		audit.ID, audit.Actor, audit.Action, audit.FileName,
		audit.Total, audit.New, audit.Updated, audit.Errors, audit.Transfers,
		audit.CreatedAt); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// Recent returns the latest audit entries, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]models.ImportAudit, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `SELECT id, actor, action, file_name, total, new, updated, errors, transfers, created_at
        FROM import_audits ORDER BY created_at DESC LIMIT $1`
	var audits []models.ImportAudit
	if err := r.db.SelectContext(ctx, &audits, query, limit); err != nil {
		return nil, fmt.Errorf("list recent audits: %w", err)
	}
	return audits, nil
}
