// Package closet persists saved outfits in SQLite. Saved outfits are
// independent snapshots: later session mutation and cache invalidation
// never touch them; only explicit deletion removes one.
package closet

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/felixgeelhaar/attire/internal/errors"
	"github.com/felixgeelhaar/attire/internal/garment"
	"github.com/felixgeelhaar/attire/internal/history"
	"github.com/felixgeelhaar/attire/internal/signature"
)

// Schema for the saved-outfit store.
const schema = `
CREATE TABLE IF NOT EXISTS saved_outfits (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    name            TEXT NOT NULL,
    outfit_sig      TEXT NOT NULL,
    pose_key        TEXT NOT NULL,
    artifact_ref    TEXT NOT NULL,
    thumbnail_ref   TEXT,
    layers          TEXT NOT NULL DEFAULT '[]',
    saved_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saved_outfits_name ON saved_outfits(name);
`

// Store is the SQLite saved-outfit store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "create closet directory", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "open closet database", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "apply closet schema", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save persists one history entry under a name and returns the stored
// outfit.
func (s *Store) Save(entry history.Entry, name, thumbnailRef string) (*history.SavedOutfit, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeStoreWriteFailed, "saved outfit needs a name")
	}

	layers, err := json.Marshal(entry.Layers)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreWriteFailed, "encode outfit layers", err)
	}

	savedAt := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO saved_outfits (name, outfit_sig, pose_key, artifact_ref, thumbnail_ref, layers, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, string(entry.Signature), entry.PoseKey, entry.ArtifactRef, thumbnailRef, string(layers), savedAt.UnixNano(),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreWriteFailed, "insert saved outfit", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreWriteFailed, "get saved outfit id", err)
	}

	return &history.SavedOutfit{
		ID:           id,
		Name:         name,
		Signature:    entry.Signature,
		PoseKey:      entry.PoseKey,
		ArtifactRef:  entry.ArtifactRef,
		ThumbnailRef: thumbnailRef,
		Layers:       entry.Layers,
		SavedAt:      savedAt,
	}, nil
}

// Get returns one saved outfit by id.
func (s *Store) Get(id int64) (*history.SavedOutfit, error) {
	row := s.db.QueryRow(`
		SELECT id, name, outfit_sig, pose_key, artifact_ref, thumbnail_ref, layers, saved_at
		FROM saved_outfits WHERE id = ?`, id)

	outfit, err := scanOutfit(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.ErrCodeStoreNotFound, fmt.Sprintf("no saved outfit with id %d", id))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "read saved outfit", err)
	}
	return outfit, nil
}

// List returns all saved outfits, most recent first.
func (s *Store) List() ([]*history.SavedOutfit, error) {
	rows, err := s.db.Query(`
		SELECT id, name, outfit_sig, pose_key, artifact_ref, thumbnail_ref, layers, saved_at
		FROM saved_outfits ORDER BY saved_at DESC`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "list saved outfits", err)
	}
	defer rows.Close()

	var outfits []*history.SavedOutfit
	for rows.Next() {
		outfit, err := scanOutfit(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "scan saved outfit", err)
		}
		outfits = append(outfits, outfit)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreOpenFailed, "iterate saved outfits", err)
	}
	return outfits, nil
}

// Delete removes a saved outfit by id.
func (s *Store) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM saved_outfits WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "delete saved outfit", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "check deletion", err)
	}
	if affected == 0 {
		return errors.New(errors.ErrCodeStoreNotFound, fmt.Sprintf("no saved outfit with id %d", id))
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanOutfit(row scannable) (*history.SavedOutfit, error) {
	var (
		outfit  history.SavedOutfit
		sig     string
		thumb   sql.NullString
		layers  string
		savedAt int64
	)
	if err := row.Scan(&outfit.ID, &outfit.Name, &sig, &outfit.PoseKey, &outfit.ArtifactRef, &thumb, &layers, &savedAt); err != nil {
		return nil, err
	}

	var stack []garment.Layer
	if err := json.Unmarshal([]byte(layers), &stack); err != nil {
		return nil, fmt.Errorf("decode outfit layers: %w", err)
	}

	outfit.Signature = signature.Signature(sig)
	outfit.ThumbnailRef = thumb.String
	outfit.Layers = stack
	outfit.SavedAt = time.Unix(0, savedAt)
	return &outfit, nil
}
