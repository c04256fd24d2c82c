package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/paperflow-app/paperflow/internal/domain"
)

type tagRow struct {
	id        string
	name      string
	color     sql.NullString
	createdAt string
}

func (r *tagRow) toDomain() domain.Tag {
	t := domain.Tag{ID: r.id, Name: r.name, CreatedAt: r.createdAt}
	if r.color.Valid {
		t.Color = &r.color.String
	}
	return t
}

func scanTag(row rowScanner) (tagRow, error) {
	var r tagRow
	err := row.Scan(&r.id, &r.name, &r.color, &r.createdAt)
	return r, err
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	defer s.lock()()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, createdAt FROM tag ORDER BY name ASC
	`)
	if err != nil {
		return nil, domain.DBError(fmt.Errorf("list tags: %w", err))
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		r, err := scanTag(rows)
		if err != nil {
			return nil, domain.DBError(fmt.Errorf("scan tag: %w", err))
		}
		tags = append(tags, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DBError(fmt.Errorf("iterate tags: %w", err))
	}

	return tags, nil
}

// CreateTag creates a tag with a unique name. A duplicate name is a
// conflict, reported before the insert so it surfaces as a domain error.
func (s *Store) CreateTag(ctx context.Context, name string, color *string) (domain.Tag, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.Tag{}, domain.BadRequest("tag name is required")
	}

	var created domain.Tag
	err := s.withTx(ctx, "create tag", func(tx *sql.Tx) error {
		var one int64
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tag WHERE name = ?`, trimmed).Scan(&one)
		if err == nil {
			return domain.Conflict(fmt.Sprintf("tag %q already exists", trimmed))
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return domain.DBError(fmt.Errorf("check tag name: %w", err))
		}

		id := s.newID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tag (id, name, color, createdAt) VALUES (?, ?, ?, ?)
		`, id, trimmed, nullable(color), s.now()); err != nil {
			return domain.DBError(fmt.Errorf("insert tag: %w", err))
		}

		r, err := scanTag(tx.QueryRowContext(ctx, `
			SELECT id, name, color, createdAt FROM tag WHERE id = ?
		`, id))
		if err != nil {
			return domain.DBError(fmt.Errorf("read created tag: %w", err))
		}
		created = r.toDomain()
		return nil
	})
	if err != nil {
		return domain.Tag{}, err
	}
	return created, nil
}

// DeleteTag removes a tag; note associations go with it via cascade.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	if strings.TrimSpace(tagID) == "" {
		return domain.BadRequest("tag id is required")
	}

	return s.withTx(ctx, "delete tag", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tag WHERE id = ?`, tagID)
		if err != nil {
			return domain.DBError(fmt.Errorf("delete tag: %w", err))
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return domain.DBError(fmt.Errorf("delete tag: rows affected: %w", err))
		}
		if affected == 0 {
			return domain.NotFound("tag %s not found", tagID)
		}
		return nil
	})
}

// TagNote attaches a tag to a note. Attaching an already-attached tag is
// a no-op.
func (s *Store) TagNote(ctx context.Context, noteID, tagID string) error {
	if strings.TrimSpace(noteID) == "" {
		return domain.BadRequest("noteId is required")
	}
	if strings.TrimSpace(tagID) == "" {
		return domain.BadRequest("tagId is required")
	}

	return s.withTx(ctx, "tag note", func(tx *sql.Tx) error {
		if err := noteExistsTx(ctx, tx, noteID); err != nil {
			return err
		}

		var one int64
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tag WHERE id = ?`, tagID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("tag %s not found", tagID)
		}
		if err != nil {
			return domain.DBError(fmt.Errorf("check tag: %w", err))
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO note_tag (noteId, tagId) VALUES (?, ?)
		`, noteID, tagID); err != nil {
			return domain.DBError(fmt.Errorf("tag note: %w", err))
		}
		return nil
	})
}

// UntagNote detaches a tag from a note. Detaching an absent association
// is NotFound.
func (s *Store) UntagNote(ctx context.Context, noteID, tagID string) error {
	if strings.TrimSpace(noteID) == "" {
		return domain.BadRequest("noteId is required")
	}
	if strings.TrimSpace(tagID) == "" {
		return domain.BadRequest("tagId is required")
	}

	return s.withTx(ctx, "untag note", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM note_tag WHERE noteId = ? AND tagId = ?
		`, noteID, tagID)
		if err != nil {
			return domain.DBError(fmt.Errorf("untag note: %w", err))
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return domain.DBError(fmt.Errorf("untag note: rows affected: %w", err))
		}
		if affected == 0 {
			return domain.NotFound("note %s is not tagged with %s", noteID, tagID)
		}
		return nil
	})
}

// ListNoteTags returns the tags attached to a note, ordered by name.
func (s *Store) ListNoteTags(ctx context.Context, noteID string) ([]domain.Tag, error) {
	if strings.TrimSpace(noteID) == "" {
		return nil, domain.BadRequest("noteId is required")
	}

	defer s.lock()()

	var one int64
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM note WHERE id = ?`, noteID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("note %s not found", noteID)
	}
	if err != nil {
		return nil, domain.DBError(fmt.Errorf("check note: %w", err))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.color, t.createdAt
		FROM tag t
		JOIN note_tag nt ON nt.tagId = t.id
		WHERE nt.noteId = ?
		ORDER BY t.name ASC
	`, noteID)
	if err != nil {
		return nil, domain.DBError(fmt.Errorf("list note tags: %w", err))
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		r, err := scanTag(rows)
		if err != nil {
			return nil, domain.DBError(fmt.Errorf("scan note tag: %w", err))
		}
		tags = append(tags, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DBError(fmt.Errorf("iterate note tags: %w", err))
	}

	return tags, nil
}

func noteExistsTx(ctx context.Context, tx *sql.Tx, noteID string) error {
	var one int64
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM note WHERE id = ?`, noteID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("note %s not found", noteID)
	}
	if err != nil {
		return domain.DBError(fmt.Errorf("check note: %w", err))
	}
	return nil
}
