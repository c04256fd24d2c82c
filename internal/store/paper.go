package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/paperflow-app/paperflow/internal/domain"
	"github.com/paperflow-app/paperflow/internal/fingerprint"
)

// untitledPaper is the title used when a file's base name is empty after
// trimming.
const untitledPaper = "Untitled"

const paperColumns = `id, workspaceId, title, doi, path, lastSeenPath, fileHash, filesize, createdAt, updatedAt`

// paperRow is the persistence projection of a paper. Kept separate from
// domain.Paper so nullable columns map explicitly at the boundary.
type paperRow struct {
	id           string
	workspaceID  string
	title        string
	doi          sql.NullString
	path         string
	lastSeenPath sql.NullString
	fileHash     string
	filesize     sql.NullInt64
	createdAt    string
	updatedAt    string
}

func (r *paperRow) toDomain() domain.Paper {
	p := domain.Paper{
		ID:          r.id,
		WorkspaceID: r.workspaceID,
		Title:       r.title,
		Path:        r.path,
		FileHash:    r.fileHash,
		CreatedAt:   r.createdAt,
		UpdatedAt:   r.updatedAt,
	}
	if r.doi.Valid {
		p.DOI = &r.doi.String
	}
	if r.lastSeenPath.Valid {
		p.LastSeenPath = &r.lastSeenPath.String
	}
	if r.filesize.Valid {
		p.Filesize = &r.filesize.Int64
	}
	return p
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (paperRow, error) {
	var r paperRow
	err := row.Scan(
		&r.id, &r.workspaceID, &r.title, &r.doi, &r.path,
		&r.lastSeenPath, &r.fileHash, &r.filesize, &r.createdAt, &r.updatedAt,
	)
	return r, err
}

// ListPapers returns all papers in a workspace, most recently updated
// first.
func (s *Store) ListPapers(ctx context.Context, workspaceID string) ([]domain.Paper, error) {
	id := strings.TrimSpace(workspaceID)
	if id == "" {
		return nil, domain.BadRequest("workspace id is required")
	}

	defer s.lock()()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+paperColumns+`
		FROM paper
		WHERE workspaceId = ?
		ORDER BY datetime(updatedAt) DESC, title ASC
	`, id)
	if err != nil {
		return nil, domain.DBError(fmt.Errorf("list papers: %w", err))
	}
	defer rows.Close()

	papers := []domain.Paper{}
	for rows.Next() {
		r, err := scanPaper(rows)
		if err != nil {
			return nil, domain.DBError(fmt.Errorf("scan paper: %w", err))
		}
		papers = append(papers, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, domain.DBError(fmt.Errorf("iterate papers: %w", err))
	}

	return papers, nil
}

// GetPaper returns a single paper by id.
func (s *Store) GetPaper(ctx context.Context, paperID string) (domain.Paper, error) {
	defer s.lock()()

	r, err := scanPaper(s.db.QueryRowContext(ctx, `
		SELECT `+paperColumns+` FROM paper WHERE id = ?
	`, paperID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Paper{}, domain.NotFound("paper %s not found", paperID)
	}
	if err != nil {
		return domain.Paper{}, domain.DBError(fmt.Errorf("get paper: %w", err))
	}
	return r.toDomain(), nil
}

// ImportPapers imports a batch of files into a workspace as one atomic
// transaction. For each path it resolves a canonical location, stats and
// hashes the file, then either updates the existing paper matched by
// content hash or path (hash match wins) or inserts a new one. Any
// failure aborts the whole import; nothing partial commits. The result
// preserves input path order.
func (s *Store) ImportPapers(ctx context.Context, req domain.PaperImportRequest) ([]domain.Paper, error) {
	if len(req.Paths) == 0 {
		return nil, domain.BadRequest("no paths provided")
	}
	if strings.TrimSpace(req.WorkspaceID) == "" {
		return nil, domain.BadRequest("workspace id is required")
	}

	imported := make([]domain.Paper, 0, len(req.Paths))
	err := s.withTx(ctx, "import papers", func(tx *sql.Tx) error {
		if err := s.ensureWorkspace(ctx, tx, req.WorkspaceID); err != nil {
			return err
		}

		for _, raw := range req.Paths {
			paper, err := s.importOne(ctx, tx, req.WorkspaceID, raw)
			if err != nil {
				return err
			}
			imported = append(imported, paper)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("imported papers",
		zap.String("workspaceId", req.WorkspaceID),
		zap.Int("count", len(imported)))
	return imported, nil
}

func (s *Store) importOne(ctx context.Context, tx *sql.Tx, workspaceID, rawPath string) (domain.Paper, error) {
	path, err := resolvePath(rawPath)
	if err != nil {
		return domain.Paper{}, err
	}

	filesize, err := statSize(path)
	if err != nil {
		return domain.Paper{}, err
	}

	hash, err := fingerprint.File(path)
	if err != nil {
		return domain.Paper{}, err
	}

	title := paperTitle(path)
	now := s.now()

	// Dedup lookup: one row matched by content hash OR observed path.
	// When both predicates match different rows the hash match wins.
	existing, err := scanPaper(tx.QueryRowContext(ctx, `
		SELECT `+paperColumns+`
		FROM paper
		WHERE fileHash = ? OR path = ?
		ORDER BY (fileHash = ?) DESC
		LIMIT 1
	`, hash, path, hash))

	var paperID string
	switch {
	case err == nil:
		// Re-import / moved file: refresh location and hash in place,
		// identity preserved.
		paperID = existing.id
		if _, err := tx.ExecContext(ctx, `
			UPDATE paper
			SET path = ?, lastSeenPath = ?, fileHash = ?, filesize = ?, updatedAt = ?
			WHERE id = ?
		`, path, path, hash, filesize, now, paperID); err != nil {
			return domain.Paper{}, domain.DBError(fmt.Errorf("update paper: %w", err))
		}

	case errors.Is(err, sql.ErrNoRows):
		paperID = s.newID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO paper
			(id, workspaceId, title, doi, path, lastSeenPath, fileHash, filesize, createdAt, updatedAt)
			VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?, ?)
		`, paperID, workspaceID, title, path, path, hash, filesize, now, now); err != nil {
			return domain.Paper{}, domain.DBError(fmt.Errorf("insert paper: %w", err))
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO paper_stats (paperId) VALUES (?)
		`, paperID); err != nil {
			return domain.Paper{}, domain.DBError(fmt.Errorf("seed paper stats: %w", err))
		}

	default:
		return domain.Paper{}, domain.DBError(fmt.Errorf("lookup paper: %w", err))
	}

	r, err := scanPaper(tx.QueryRowContext(ctx, `
		SELECT `+paperColumns+` FROM paper WHERE id = ?
	`, paperID))
	if err != nil {
		return domain.Paper{}, domain.DBError(fmt.Errorf("read imported paper: %w", err))
	}
	return r.toDomain(), nil
}

// resolvePath canonicalizes to an absolute, symlink-free path when
// possible. Resolution failure (e.g. file not yet materialized) falls
// back to the literal input; the subsequent stat decides whether the
// import fails.
func resolvePath(raw string) (string, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return raw, nil
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}

// statSize reads the file size. A stat failure is fatal for the whole
// import: partial imports never commit.
func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, domain.IOError(path, "read file metadata for import", err)
	}
	return info.Size(), nil
}

// paperTitle derives the display title from the file's base name without
// extension.
func paperTitle(path string) string {
	base := filepath.Base(path)
	title := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if title == "" {
		return untitledPaper
	}
	return title
}
