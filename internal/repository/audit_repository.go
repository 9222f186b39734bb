package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/accountd/accountd/internal/database"
	"github.com/accountd/accountd/internal/model"
)

// AuditRepository handles audit log persistence
type AuditRepository struct {
	db *database.Postgres
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *database.Postgres) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts an audit log entry
func (r *AuditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		metadataJSON = []byte("{}")
	}

	query := `
		INSERT INTO audit_log (id, user_id, action, target_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.TargetID,
		metadataJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// ListByTarget returns the most recent audit entries for a target account
func (r *AuditRepository) ListByTarget(ctx context.Context, targetID string, limit int) ([]*model.AuditEntry, error) {
	query := `
		SELECT id, user_id, action, target_id, metadata, created_at
		FROM audit_log
		WHERE target_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*model.AuditEntry
	for rows.Next() {
		var entry model.AuditEntry
		var metadataJSON []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.TargetID, &metadataJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(metadataJSON) > 0 {
			json.Unmarshal(metadataJSON, &entry.Metadata)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
