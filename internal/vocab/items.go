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
	"github.com/lectio/lectio-server/internal/segment"
)

const itemColumns = `id, folder_id, term, term_language, meaning, meaning_language,
	example, example_language, position, created_at, updated_at`

func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.VocabItem, error) {
	var it domain.VocabItem

	var (
		createdAt   string
		updatedAt   string
		example     sql.NullString
		exampleLang sql.NullString
	)

	err := scanner.Scan(
		&it.ID,
		&it.FolderID,
		&it.Term,
		&it.TermLanguage,
		&it.Meaning,
		&it.MeaningLanguage,
		&example,
		&exampleLang,
		&it.Position,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	it.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if example.Valid {
		it.Example = example.String
	}
	if exampleLang.Valid {
		it.ExampleLanguage = exampleLang.String
	}

	return &it, nil
}

// ItemInput carries the user-editable fields of a vocabulary item.
type ItemInput struct {
	Term            string
	TermLanguage    string
	Meaning         string
	MeaningLanguage string
	Example         string
	ExampleLanguage string
}

// CreateItem appends a new item to a folder, assigning it the next position.
// Returns apperrors.ErrNotFound when the folder does not exist for the user.
func (s *Store) CreateItem(ctx context.Context, ownerID, folderID string, in ItemInput) (*domain.VocabItem, error) {
	if _, err := s.GetFolder(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	itemID, err := id.Generate("vocab")
	if err != nil {
		return nil, fmt.Errorf("generate item ID: %w", err)
	}

	now := time.Now().UTC()
	it := &domain.VocabItem{
		ID:              itemID,
		FolderID:        folderID,
		Term:            in.Term,
		TermLanguage:    segment.NormalizeLang(in.TermLanguage),
		Meaning:         in.Meaning,
		MeaningLanguage: segment.NormalizeLang(in.MeaningLanguage),
		Example:         in.Example,
		ExampleLanguage: segment.NormalizeLang(in.ExampleLanguage),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM vocab_items WHERE folder_id = ?`,
		folderID).Scan(&it.Position)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO vocab_items (
			id, folder_id, term, term_language, meaning, meaning_language,
			example, example_language, position, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID,
		it.FolderID,
		it.Term,
		it.TermLanguage,
		it.Meaning,
		it.MeaningLanguage,
		nullString(it.Example),
		nullString(it.ExampleLanguage),
		it.Position,
		formatTime(it.CreatedAt),
		formatTime(it.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return it, nil
}

// GetItem retrieves one item, scoped to the folder owner.
func (s *Store) GetItem(ctx context.Context, ownerID, itemID string) (*domain.VocabItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM vocab_items
		WHERE id = ? AND folder_id IN (SELECT id FROM vocab_folders WHERE owner_id = ?)`,
		itemID, ownerID)

	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("vocab item %s not found", itemID)
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// UpdateItem replaces the editable fields of an item.
func (s *Store) UpdateItem(ctx context.Context, ownerID, itemID string, in ItemInput) (*domain.VocabItem, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE vocab_items SET
			term = ?,
			term_language = ?,
			meaning = ?,
			meaning_language = ?,
			example = ?,
			example_language = ?,
			updated_at = ?
		WHERE id = ? AND folder_id IN (SELECT id FROM vocab_folders WHERE owner_id = ?)`,
		in.Term,
		segment.NormalizeLang(in.TermLanguage),
		in.Meaning,
		segment.NormalizeLang(in.MeaningLanguage),
		nullString(in.Example),
		nullString(segment.NormalizeLang(in.ExampleLanguage)),
		formatTime(time.Now().UTC()),
		itemID, ownerID)
	if err != nil {
		return nil, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.NotFoundf("vocab item %s not found", itemID)
	}

	return s.GetItem(ctx, ownerID, itemID)
}

// DeleteItem removes one item.
func (s *Store) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM vocab_items
		WHERE id = ? AND folder_id IN (SELECT id FROM vocab_folders WHERE owner_id = ?)`,
		itemID, ownerID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFoundf("vocab item %s not found", itemID)
	}
	return nil
}

// ReorderItems rewrites the positions of a folder's items to match the given
// id order in a single transaction. Every item of the folder must appear
// exactly once.
func (s *Store) ReorderItems(ctx context.Context, ownerID, folderID string, itemIDs []string) error {
	current, err := s.ItemsByFolder(ctx, ownerID, folderID)
	if err != nil {
		return err
	}
	if len(current) != len(itemIDs) {
		return apperrors.Validationf("reorder must list all %d items, got %d", len(current), len(itemIDs))
	}
	known := make(map[string]bool, len(current))
	for _, it := range current {
		known[it.ID] = true
	}
	for _, itemID := range itemIDs {
		if !known[itemID] {
			return apperrors.Validationf("item %s does not belong to folder %s", itemID, folderID)
		}
		delete(known, itemID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(time.Now().UTC())
	for pos, itemID := range itemIDs {
		_, err := tx.ExecContext(ctx, `
			UPDATE vocab_items SET position = ?, updated_at = ?
			WHERE id = ? AND folder_id = ?`,
			pos, now, itemID, folderID)
		if err != nil {
			return fmt.Errorf("update position: %w", err)
		}
	}

	return tx.Commit()
}

// ItemsByFolder returns a folder's items in narration order. It implements
// the engine's vocabulary provider.
// Returns apperrors.ErrNotFound when the folder does not exist for the user.
func (s *Store) ItemsByFolder(ctx context.Context, ownerID, folderID string) ([]domain.VocabItem, error) {
	if _, err := s.GetFolder(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM vocab_items
		WHERE folder_id = ? ORDER BY position ASC`,
		folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.VocabItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
