package vocab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lectio/lectio-server/internal/domain"
	apperrors "github.com/lectio/lectio-server/internal/errors"
	"github.com/lectio/lectio-server/internal/id"
)

const folderColumns = `id, owner_id, name, created_at, updated_at`

func scanFolder(scanner interface{ Scan(dest ...any) error }) (*domain.VocabFolder, error) {
	var f domain.VocabFolder
	var createdAt, updatedAt string

	err := scanner.Scan(&f.ID, &f.OwnerID, &f.Name, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	f.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	f.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// CreateFolder creates a new vocabulary folder for a user.
func (s *Store) CreateFolder(ctx context.Context, ownerID, name string) (*domain.VocabFolder, error) {
	folderID, err := id.Generate("folder")
	if err != nil {
		return nil, fmt.Errorf("generate folder ID: %w", err)
	}

	now := time.Now().UTC()
	f := &domain.VocabFolder{
		ID:        folderID,
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vocab_folders (id, owner_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.OwnerID, f.Name, formatTime(f.CreatedAt), formatTime(f.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	return f, nil
}

// GetFolder retrieves a folder by ID, scoped to its owner.
// Returns apperrors.ErrNotFound when the folder does not exist or belongs to
// a different user.
func (s *Store) GetFolder(ctx context.Context, ownerID, folderID string) (*domain.VocabFolder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+folderColumns+` FROM vocab_folders WHERE id = ? AND owner_id = ?`,
		folderID, ownerID)

	f, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("folder %s not found", folderID)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListFolders returns all folders of a user, newest first.
func (s *Store) ListFolders(ctx context.Context, ownerID string) ([]*domain.VocabFolder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+folderColumns+` FROM vocab_folders WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*domain.VocabFolder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return folders, nil
}

// RenameFolder updates a folder's name.
// Returns apperrors.ErrNotFound when the folder does not exist for the user.
func (s *Store) RenameFolder(ctx context.Context, ownerID, folderID, name string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE vocab_folders SET name = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		name, formatTime(time.Now().UTC()), folderID, ownerID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFoundf("folder %s not found", folderID)
	}
	return nil
}

// DeleteFolder removes a folder and, via the schema's cascade, its items.
// Returns apperrors.ErrNotFound when the folder does not exist for the user.
func (s *Store) DeleteFolder(ctx context.Context, ownerID, folderID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM vocab_folders WHERE id = ? AND owner_id = ?`,
		folderID, ownerID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFoundf("folder %s not found", folderID)
	}
	return nil
}
