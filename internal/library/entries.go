package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vibecodec/internal/fileutil"
	"vibecodec/internal/logging"
	"vibecodec/internal/vibe"
)

// Entry is one stored vibe.
type Entry struct {
	ID         string
	BatchID    string
	Position   int
	Name       string
	Kind       vibe.Kind
	Models     []string
	Source     string
	Digest     string
	ImportedAt time.Time
	Record     vibe.Record
}

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const entryColumns = "id, batch_id, position, name, kind, source, digest, record_json, imported_at"

// Import stores every record in c. Bundle members share one batch ID and keep
// their bundle order. Nothing is stored if any record is invalid or already
// present.
func (s *Store) Import(ctx context.Context, c vibe.Container, source string) ([]Entry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	importedAt := time.Now().UTC()
	records := c.Records()
	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		rec = rec.Clone()
		if rec.Identifier == "" {
			rec.Identifier = vibe.IdentifierSingle
		}
		doc, err := vibe.Marshal(vibe.SingleContainer(rec))
		if err != nil {
			return nil, fmt.Errorf("marshal vibe %d: %w", i, err)
		}
		entries = append(entries, Entry{
			ID:         uuid.NewString(),
			BatchID:    batchID,
			Position:   i,
			Name:       rec.Name,
			Kind:       rec.Kind,
			Models:     rec.Encodings.Models(),
			Source:     source,
			Digest:     fileutil.SHA256Hex(doc),
			ImportedAt: importedAt,
			Record:     rec,
		})
	}

	err := s.withWriteLock(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin import tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, e := range entries {
			if err := insertEntry(ctx, tx, e); err != nil {
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit import: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("vibes imported", logging.Args(
		logging.String(logging.FieldEventType, "library_import"),
		logging.String("batch_id", batchID),
		logging.Int("count", len(entries)),
		logging.String(logging.FieldSource, source),
	)...)
	return entries, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, e Entry) error {
	var existing string
	err := tx.QueryRowContext(ctx, "SELECT id FROM vibes WHERE digest = ?", e.Digest).Scan(&existing)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %q matches %s", ErrDuplicate, e.Name, existing)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check duplicate: %w", err)
	}

	recordJSON, err := json.Marshal(e.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vibes (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BatchID, e.Position, e.Name, string(e.Kind), e.Source, e.Digest,
		string(recordJSON), e.ImportedAt.Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert vibe %q: %w", e.Name, err)
	}
	for _, model := range e.Models {
		if _, err := tx.ExecContext(ctx, "INSERT INTO vibe_models (vibe_id, model) VALUES (?, ?)", e.ID, model); err != nil {
			return fmt.Errorf("insert model %q: %w", model, err)
		}
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Model keeps only vibes carrying an encoding for this model.
	Model string
}

// List returns stored vibes, newest batch first, bundle members in order.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM vibes`
	var args []any
	if model := strings.TrimSpace(opts.Model); model != "" {
		query += ` WHERE id IN (SELECT vibe_id FROM vibe_models WHERE model = ?)`
		args = append(args, model)
	}
	query += ` ORDER BY imported_at DESC, batch_id, position`
	return s.queryEntries(ctx, query, args...)
}

// Get returns the entry whose ID equals id or, failing that, starts with it.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	entries, err := s.queryEntries(ctx, `SELECT `+entryColumns+` FROM vibes WHERE id = ?`, id)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 1 {
		return entries[0], nil
	}

	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id) + "%"
	entries, err = s.queryEntries(ctx, `SELECT `+entryColumns+` FROM vibes WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return Entry{}, err
	}
	switch len(entries) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return entries[0], nil
	default:
		return Entry{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// Batch returns the members of one import in their original order.
func (s *Store) Batch(ctx context.Context, batchID string) ([]Entry, error) {
	entries, err := s.queryEntries(ctx, `SELECT `+entryColumns+` FROM vibes WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: batch %s", ErrNotFound, batchID)
	}
	return entries, nil
}

// Remove deletes the entry with the given ID or unique ID prefix.
func (s *Store) Remove(ctx context.Context, id string) (Entry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	err = s.withWriteLock(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM vibes WHERE id = ?", entry.ID)
		if err != nil {
			return fmt.Errorf("delete vibe: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, entry.ID)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.logger.Info("vibe removed", logging.Args(
		logging.String(logging.FieldEventType, "library_remove"),
		logging.String("id", entry.ID),
		logging.String(logging.FieldVibeName, entry.Name),
	)...)
	return entry, nil
}

// ExportBundle assembles the given entries, in argument order, into a bundle.
func (s *Store) ExportBundle(ctx context.Context, ids ...string) (vibe.Bundle, error) {
	if len(ids) == 0 {
		return vibe.Bundle{}, errors.New("export bundle: no ids given")
	}
	records := make([]vibe.Record, 0, len(ids))
	for _, id := range ids {
		entry, err := s.Get(ctx, id)
		if err != nil {
			return vibe.Bundle{}, err
		}
		records = append(records, entry.Record)
	}
	return vibe.NewBundle(records...)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vibes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vibes: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		kind       string
		recordJSON string
		importedAt string
	)
	if err := rows.Scan(&e.ID, &e.BatchID, &e.Position, &e.Name, &kind, &e.Source, &e.Digest, &recordJSON, &importedAt); err != nil {
		return Entry{}, fmt.Errorf("scan vibe: %w", err)
	}
	e.Kind = vibe.Kind(kind)
	rec, err := vibe.ParseRecord([]byte(recordJSON))
	if err != nil {
		return Entry{}, fmt.Errorf("decode stored vibe %s: %w", e.ID, err)
	}
	e.Record = rec
	e.Models = rec.Encodings.Models()
	if ts, err := time.Parse(timeLayout, importedAt); err == nil {
		e.ImportedAt = ts
	}
	return e, nil
}
