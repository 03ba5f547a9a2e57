package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/nomina/internal/core/domain"
	"github.com/custodia-labs/nomina/internal/core/ports/driven"
	"github.com/custodia-labs/nomina/internal/logger"
)

// processingStore implements driven.ProcessingStore.
type processingStore struct {
	store *Store
}

var _ driven.ProcessingStore = (*processingStore)(nil)

// IsProcessed reports whether a processed marker exists for ref.
func (s *processingStore) IsProcessed(ctx context.Context, ref domain.UnitReference) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_units WHERE id = ?", ref.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking processed unit: %w", err)
	}
	return true, nil
}

// GetNames returns the names stored for ref in insertion order.
func (s *processingStore) GetNames(ctx context.Context, ref domain.UnitReference) ([]domain.ExtractedName, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, type FROM extracted_names
		WHERE unit_reference = ?
		ORDER BY id
	`, ref.String())
	if err != nil {
		return nil, fmt.Errorf("querying names: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

// Commit atomically inserts the processed marker and every name.
func (s *processingStore) Commit(ctx context.Context, ref domain.UnitReference, names []domain.ExtractedName) error {
	id := ref.String()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO processed_units (id, processed_at) VALUES (?, ?)
			ON CONFLICT(id) DO NOTHING
		`, id, now)
		if err != nil {
			return fmt.Errorf("inserting processed unit: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("inserting processed unit: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("commit %s: %w", id, domain.ErrAlreadyProcessed)
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO extracted_names (name, type, unit_reference) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing name insert: %w", err)
		}
		defer stmt.Close()

		for _, name := range names {
			if _, err := stmt.ExecContext(ctx, name.Name, domain.ParseNameType(string(name.Type)).String(), id); err != nil {
				return fmt.Errorf("inserting name %q: %w", name.Name, err)
			}
		}
		return nil
	})
}

// Clear atomically removes ref's names and processed marker.
func (s *processingStore) Clear(ctx context.Context, ref domain.UnitReference) error {
	id := ref.String()

	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM extracted_names WHERE unit_reference = ?", id); err != nil {
			return fmt.Errorf("deleting names: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM processed_units WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting processed unit: %w", err)
		}
		return nil
	})
}

// ListDistinctNames returns every distinct (name, type) ordered by type then name.
func (s *processingStore) ListDistinctNames(ctx context.Context) ([]domain.ExtractedName, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT DISTINCT name, type FROM extracted_names ORDER BY type, name")
	if err != nil {
		return nil, fmt.Errorf("querying distinct names: %w", err)
	}
	defer rows.Close()

	return scanNames(rows)
}

// ListUnitsForName returns the units a name was extracted from, in first-seen order.
func (s *processingStore) ListUnitsForName(ctx context.Context, name string) ([]domain.UnitReference, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT unit_reference FROM extracted_names
		WHERE name = ?
		GROUP BY unit_reference
		ORDER BY MIN(id)
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying units for name: %w", err)
	}
	defer rows.Close()

	var refs []domain.UnitReference //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning unit reference: %w", err)
		}
		ref, err := domain.ParseUnitReference(id)
		if err != nil {
			logger.Warn("sqlite: skipping malformed unit reference %q: %v", id, err)
			continue
		}
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unit references: %w", err)
	}

	return refs, nil
}

// DeleteName removes every record of name, whatever its type.
func (s *processingStore) DeleteName(ctx context.Context, name string) (int, error) {
	var count int
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM extracted_names WHERE name = ?", name)
		if err != nil {
			return fmt.Errorf("deleting name: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting name: %w", err)
		}
		count = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListProcessed returns every processed unit of one collection and version.
func (s *processingStore) ListProcessed(ctx context.Context, collectionKey, version string) ([]domain.ProcessedUnit, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, processed_at FROM processed_units
		WHERE id LIKE ? ESCAPE '\'
	`, escapeLike(collectionKey+"-")+"%")
	if err != nil {
		return nil, fmt.Errorf("querying processed units: %w", err)
	}
	defer rows.Close()

	var units []domain.ProcessedUnit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id, processedAt string
		if err := rows.Scan(&id, &processedAt); err != nil {
			return nil, fmt.Errorf("scanning processed unit: %w", err)
		}

		// The prefix also matches longer keys such as "juan" vs "juan-extra"
		ref, err := domain.ParseUnitReference(id)
		if err != nil || ref.CollectionKey != collectionKey || ref.Version != version {
			continue
		}

		at, err := time.Parse(time.RFC3339Nano, processedAt)
		if err != nil {
			logger.Warn("sqlite: unparseable processed_at %q for %s", processedAt, id)
		}
		units = append(units, domain.ProcessedUnit{Ref: ref, ProcessedAt: at})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating processed units: %w", err)
	}

	return units, nil
}

// ==================== Helper Functions ====================

func scanNames(rows *sql.Rows) ([]domain.ExtractedName, error) {
	names := []domain.ExtractedName{}
	for rows.Next() {
		var name string
		var typ sql.NullString
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, fmt.Errorf("scanning name: %w", err)
		}
		names = append(names, domain.ExtractedName{
			Name: name,
			Type: domain.ParseNameType(typ.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating names: %w", err)
	}
	return names, nil
}

// escapeLike escapes LIKE wildcards so collection keys match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
