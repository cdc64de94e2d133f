// Package attachments stores metadata of note attachments. The blobs
// themselves live in object storage under StorageKey.
package attachments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	query := `
		INSERT INTO note_attachments (note_id, user_id, storage_key, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		a.NoteID, a.UserID, a.StorageKey, a.FileName, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// GetByID returns the attachment only when both the note and the owner match.
func (r *SQLRepository) GetByID(ctx context.Context, id, noteID, userID int64) (*models.Attachment, error) {
	query := `SELECT id, note_id, user_id, storage_key, file_name, created_at FROM note_attachments
		WHERE id = $1 AND note_id = $2 AND user_id = $3
		`
	a := &models.Attachment{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id, noteID, userID).
		Scan(&a.ID, &a.NoteID, &a.UserID, &a.StorageKey, &a.FileName, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *SQLRepository) ListByNote(ctx context.Context, noteID, userID int64) ([]*models.Attachment, error) {
	query := `SELECT id, note_id, user_id, storage_key, file_name, created_at FROM note_attachments
		WHERE note_id = $1 AND user_id = $2
		ORDER BY id
		`
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), noteID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []*models.Attachment
	for rows.Next() {
		var item models.Attachment
		if err := rows.Scan(&item.ID, &item.NoteID, &item.UserID, &item.StorageKey, &item.FileName, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByNote removes every attachment row of the note and reports how many
// were deleted.
func (r *SQLRepository) DeleteByNote(ctx context.Context, noteID, userID int64) (int64, error) {
	query := `DELETE FROM note_attachments WHERE note_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), noteID, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
