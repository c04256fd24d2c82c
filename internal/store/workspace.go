package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/paperflow-app/paperflow/internal/domain"
	"github.com/paperflow-app/paperflow/internal/slug"
)

// ListWorkspaces returns all workspaces, most recently updated first.
func (s *Store) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	defer s.lock()()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, createdAt, updatedAt
		FROM workspace
		ORDER BY datetime(updatedAt) DESC, name ASC
	`)
	if err != nil {
		return nil, domain.DBError(fmt.Errorf("list workspaces: %w", err))
	}
	defer rows.Close()

	workspaces := []domain.Workspace{}
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, domain.DBError(fmt.Errorf("scan workspace: %w", err))
		}
		workspaces = append(workspaces, w)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DBError(fmt.Errorf("iterate workspaces: %w", err))
	}

	return workspaces, nil
}

// CreateWorkspace creates a workspace named after the trimmed input. The
// id is the collision-resolved slug of the name; id generation probes
// inside the insert transaction so a concurrent insert cannot race the
// probe.
func (s *Store) CreateWorkspace(ctx context.Context, name string) (domain.Workspace, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.Workspace{}, domain.BadRequest("workspace name is required")
	}

	var created domain.Workspace
	err := s.withTx(ctx, "create workspace", func(tx *sql.Tx) error {
		id, err := s.generateWorkspaceID(tx, trimmed)
		if err != nil {
			return domain.DBError(fmt.Errorf("generate workspace id: %w", err))
		}

		now := s.now()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO workspace (id, name, createdAt, updatedAt)
			VALUES (?, ?, ?, ?)
		`, id, trimmed, now, now); err != nil {
			return domain.DBError(fmt.Errorf("insert workspace: %w", err))
		}

		return s.readWorkspaceTx(ctx, tx, id, &created)
	})
	if err != nil {
		return domain.Workspace{}, err
	}
	return created, nil
}

// RenameWorkspace updates the display name. The id is immutable.
func (s *Store) RenameWorkspace(ctx context.Context, workspaceID, newName string) (domain.Workspace, error) {
	id := strings.TrimSpace(workspaceID)
	if id == "" {
		return domain.Workspace{}, domain.BadRequest("workspace id is required")
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		return domain.Workspace{}, domain.BadRequest("workspace name is required")
	}

	var renamed domain.Workspace
	err := s.withTx(ctx, "rename workspace", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE workspace SET name = ?, updatedAt = ? WHERE id = ?
		`, name, s.now(), id)
		if err != nil {
			return domain.DBError(fmt.Errorf("rename workspace: %w", err))
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return domain.DBError(fmt.Errorf("rename workspace: rows affected: %w", err))
		}
		if affected == 0 {
			return domain.NotFound("workspace %s not found", id)
		}

		return s.readWorkspaceTx(ctx, tx, id, &renamed)
	})
	if err != nil {
		return domain.Workspace{}, err
	}
	return renamed, nil
}

// DeleteWorkspace removes a workspace. The default workspace is reserved
// and always rejected. Papers and notes under the workspace go with it
// via foreign-key cascade. Deleting an absent workspace is NotFound.
func (s *Store) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	id := strings.TrimSpace(workspaceID)
	if id == "" {
		return domain.BadRequest("workspace id is required")
	}
	if id == domain.DefaultWorkspaceID {
		return domain.BadRequest("default workspace cannot be removed")
	}

	return s.withTx(ctx, "delete workspace", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM workspace WHERE id = ?`, id)
		if err != nil {
			return domain.DBError(fmt.Errorf("delete workspace: %w", err))
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return domain.DBError(fmt.Errorf("delete workspace: rows affected: %w", err))
		}
		if affected == 0 {
			return domain.NotFound("workspace %s not found", id)
		}
		return nil
	})
}

// generateWorkspaceID derives a collision-resolved id from the name.
// An empty slug (no alphanumeric content) falls back to a minted random
// id; otherwise the bare slug, then slug-2, slug-3, ... are probed until
// one is unused. Runs inside the caller's transaction.
func (s *Store) generateWorkspaceID(tx *sql.Tx, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return s.newID(), nil
	}

	exists, err := workspaceExistsTx(tx, base)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}

	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s-%d", base, counter)
		exists, err := workspaceExistsTx(tx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// ensureWorkspace auto-creates the target workspace when an import
// references an id that does not exist, using the id as a placeholder
// name. Deliberate silent-repair policy carried over from the original
// import flow; logged so caller bugs stay visible.
func (s *Store) ensureWorkspace(ctx context.Context, tx *sql.Tx, workspaceID string) error {
	exists, err := workspaceExistsTx(tx, workspaceID)
	if err != nil {
		return domain.DBError(fmt.Errorf("check workspace: %w", err))
	}
	if exists {
		return nil
	}

	s.log.Warn("auto-creating workspace referenced by import",
		zap.String("workspaceId", workspaceID))

	now := s.now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO workspace (id, name, createdAt, updatedAt)
		VALUES (?, ?, ?, ?)
	`, workspaceID, workspaceID, now, now); err != nil {
		return domain.DBError(fmt.Errorf("auto-create workspace: %w", err))
	}
	return nil
}

func workspaceExistsTx(tx *sql.Tx, id string) (bool, error) {
	var one int64
	err := tx.QueryRow(`SELECT 1 FROM workspace WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) readWorkspaceTx(ctx context.Context, tx *sql.Tx, id string, out *domain.Workspace) error {
	err := tx.QueryRowContext(ctx, `
		SELECT id, name, createdAt, updatedAt FROM workspace WHERE id = ?
	`, id).Scan(&out.ID, &out.Name, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return domain.DBError(fmt.Errorf("read workspace: %w", err))
	}
	return nil
}
