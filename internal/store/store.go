package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/vidshare/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	// DatabaseName is the file name of the history database inside the data dir
	DatabaseName = "history.db"

	// SchemaVersion is the schema this build writes
	SchemaVersion = 1

	defaultOpenTimeout = 1 * time.Second
)

// Bucket names
var (
	bucketMeta       = []byte("meta")
	bucketEntries    = []byte("recently_viewed")
	bucketByViewedAt = []byte("recently_viewed_by_viewed_at")

	keySchemaVersion = []byte("schema_version")
)

// indexTimeLayout is fixed width so byte order matches time order (UTC only)
const indexTimeLayout = "2006-01-02T15:04:05.000000000Z"

// migration brings the schema up to version. apply must be idempotent.
type migration struct {
	version int
	apply   func(tx *bolt.Tx, logger *slog.Logger) error
}

var migrations = []migration{
	{version: 1, apply: createEntryBuckets},
}

// Options controls how the database is opened
type Options struct {
	// Profile scopes the database to a subdirectory (hashed), empty for the dir itself
	Profile string

	// SchemaVersion requested by the caller, defaults to SchemaVersion
	SchemaVersion int

	// Timeout waiting for the file lock held by another process
	Timeout time.Duration

	// Logger receives migration diagnostics, defaults to slog.Default()
	Logger *slog.Logger
}

// BoltStore implements domain.HistoryStore using BoltDB.
type BoltStore struct {
	db      *bolt.DB
	path    string
	version int
}

var _ domain.HistoryStore = (*BoltStore)(nil)

// Open opens or creates the history database under dir and migrates it to
// the requested schema version.
func Open(dir string, opts Options) (*BoltStore, error) {
	if opts.SchemaVersion <= 0 {
		opts.SchemaVersion = SchemaVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultOpenTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Profile != "" {
		dir = filepath.Join(dir, hashProfile(opts.Profile))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w: %w", domain.ErrStorageUnavailable, err)
	}

	dbPath := filepath.Join(dir, DatabaseName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w: %w", domain.ErrStorageUnavailable, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		return migrate(tx, opts.SchemaVersion, opts.Logger)
	}); err != nil {
		db.Close()
		if errors.Is(err, domain.ErrSchemaDowngrade) {
			return nil, err
		}
		return nil, writeErr("migrate schema", err)
	}

	return &BoltStore{db: db, path: dbPath, version: opts.SchemaVersion}, nil
}

func hashProfile(profile string) string {
	normalized := strings.TrimSpace(strings.ToLower(profile))
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// migrate runs every known migration up to version when the stored schema is older.
func migrate(tx *bolt.Tx, version int, logger *slog.Logger) error {
	meta, err := tx.CreateBucketIfNotExists(bucketMeta)
	if err != nil {
		return err
	}

	stored := 0
	if v := meta.Get(keySchemaVersion); len(v) == 8 {
		stored = int(binary.BigEndian.Uint64(v))
	}

	switch {
	case stored > version:
		return fmt.Errorf("schema %d, requested %d: %w", stored, version, domain.ErrSchemaDowngrade)
	case stored == version:
		return nil
	}

	for _, m := range migrations {
		if m.version > version {
			break
		}
		if err := m.apply(tx, logger); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(version))
	return meta.Put(keySchemaVersion, buf)
}

// createEntryBuckets creates the entry table and the viewedAt index.
// A freshly created index is backfilled from existing entries. Records that
// cannot be decoded stay unindexed so the rest of the history survives.
func createEntryBuckets(tx *bolt.Tx, logger *slog.Logger) error {
	entries, err := tx.CreateBucketIfNotExists(bucketEntries)
	if err != nil {
		return err
	}
	if tx.Bucket(bucketByViewedAt) != nil {
		return nil
	}

	idx, err := tx.CreateBucket(bucketByViewedAt)
	if err != nil {
		return err
	}
	return entries.ForEach(func(k, v []byte) error {
		var rec struct {
			ViewedAt time.Time `json:"viewedAt"`
		}
		if err := json.Unmarshal(v, &rec); err != nil {
			logger.Warn("skipping undecodable history record", "videoID", string(k), "error", err)
			return nil
		}
		return idx.Put(indexKey(rec.ViewedAt, string(k)), k)
	})
}

// indexKey orders by viewedAt, then videoID
func indexKey(viewedAt time.Time, videoID string) []byte {
	key := make([]byte, 0, len(indexTimeLayout)+1+len(videoID))
	key = viewedAt.UTC().AppendFormat(key, indexTimeLayout)
	key = append(key, 0)
	return append(key, videoID...)
}

// Path returns the database file path
func (s *BoltStore) Path() string {
	return s.path
}

// Version returns the schema version the store was opened with
func (s *BoltStore) Version() int {
	return s.version
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *BoltStore) Put(ctx context.Context, entry domain.RecentlyViewedEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.VideoID == "" {
		return domain.ErrInvalidVideo
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry %q: %w", entry.VideoID, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		idx := tx.Bucket(bucketByViewedAt)
		key := []byte(entry.VideoID)

		if old := b.Get(key); old != nil {
			if err := unindex(idx, entry.VideoID, old); err != nil {
				return err
			}
		}
		if err := b.Put(key, data); err != nil {
			return err
		}
		return idx.Put(indexKey(entry.ViewedAt, entry.VideoID), key)
	})
	return writeErr("put entry", err)
}

func (s *BoltStore) Get(ctx context.Context, videoID string) (domain.RecentlyViewedEntry, bool, error) {
	var entry domain.RecentlyViewedEntry
	if err := ctx.Err(); err != nil {
		return entry, false, err
	}

	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketEntries).Get([]byte(videoID))
		if v == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(v, &entry); err != nil {
			return err
		}
		// JSON replaces invalid UTF-8, the bucket key is the real id
		entry.VideoID = videoID
		return nil
	})
	if err != nil {
		return domain.RecentlyViewedEntry{}, false, readErr("get entry", err)
	}
	return entry, found, nil
}

func (s *BoltStore) Delete(ctx context.Context, videoIDs ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(videoIDs) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		idx := tx.Bucket(bucketByViewedAt)
		for _, id := range videoIDs {
			old := b.Get([]byte(id))
			if old == nil {
				continue
			}
			if err := unindex(idx, id, old); err != nil {
				return err
			}
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	return writeErr("delete entries", err)
}

func (s *BoltStore) ScanByViewedAt(ctx context.Context) ([]domain.RecentlyViewedEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.RecentlyViewedEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		c := tx.Bucket(bucketByViewedAt).Cursor()
		for k, id := c.First(); k != nil; k, id = c.Next() {
			v := b.Get(id)
			if v == nil {
				continue // dangling index key
			}
			var entry domain.RecentlyViewedEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode entry %q: %w", id, err)
			}
			entry.VideoID = string(id)
			out = append(out, entry)
		}
		return nil
	})
	if err != nil {
		return nil, readErr("scan entries", err)
	}
	return out, nil
}

func (s *BoltStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketEntries, bucketByViewedAt} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	return writeErr("clear entries", err)
}

// unindex removes the index key for the stored record old. If the record
// cannot be decoded the index is scanned for keys pointing at videoID.
func unindex(idx *bolt.Bucket, videoID string, old []byte) error {
	var rec struct {
		ViewedAt time.Time `json:"viewedAt"`
	}
	if err := json.Unmarshal(old, &rec); err == nil {
		return idx.Delete(indexKey(rec.ViewedAt, videoID))
	}

	var stale [][]byte
	c := idx.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if bytes.Equal(v, []byte(videoID)) {
			stale = append(stale, append([]byte(nil), k...))
		}
	}
	for _, k := range stale {
		if err := idx.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func unavailable(err error) bool {
	return errors.Is(err, bolt.ErrDatabaseNotOpen) ||
		errors.Is(err, bolt.ErrDatabaseReadOnly) ||
		errors.Is(err, bolt.ErrTimeout) ||
		errors.Is(err, bolt.ErrInvalid) ||
		errors.Is(err, os.ErrPermission)
}

func passthrough(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrStorageUnavailable) ||
		errors.Is(err, domain.ErrWriteConflict) ||
		errors.Is(err, domain.ErrInvalidVideo)
}

// writeErr maps a failed update transaction onto the domain taxonomy
func writeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case passthrough(err):
		return fmt.Errorf("%s: %w", op, err)
	case unavailable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteConflict, err)
	}
}

// readErr maps a failed view transaction; reads never conflict
func readErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case passthrough(err):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
}
