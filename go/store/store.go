// Package store persists rendered previews in sqlite, lz4-compressed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	lz4 "github.com/DataDog/golz4-2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Body encodings, stored in the first byte.
const (
	encRaw byte = 0
	encLZ4 byte = 1
)

const schema = `CREATE TABLE IF NOT EXISTS previews (
	key TEXT PRIMARY KEY,
	body BLOB NOT NULL,
	created INTEGER NOT NULL
)`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating schema in %s", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Key identifies a preview by everything that affects its bytes.
func Key(packs []string, assetID, state string, scale float64) string {
	return fmt.Sprintf("%s|%s|%s|%g", strings.Join(packs, ","), assetID, state, scale)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, "SELECT body FROM previews WHERE key=?", key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %q", key)
	}
	buf, err := decompress(body)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decoding %q", key)
	}
	return buf, true, nil
}

func (s *Store) Put(ctx context.Context, key string, buf []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO previews (key, body, created) VALUES (?, ?, ?)",
		key, compress(buf), time.Now().Unix())
	return errors.Wrapf(err, "writing %q", key)
}

// Len returns the number of stored previews.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM previews").Scan(&n)
	return n, errors.Wrap(err, "counting previews")
}

func compress(buf []byte) []byte {
	comp := make([]byte, lz4.CompressBoundHdr(buf)+1)
	n, err := lz4.CompressHCHdr(comp[1:], buf)
	if err != nil || n >= len(buf) {
		return append([]byte{encRaw}, buf...)
	}
	comp[0] = encLZ4
	return comp[:n+1]
}

func decompress(buf []byte) ([]byte, error) {
	if len(buf) == 0 {
		return nil, errors.New("empty body")
	}
	switch buf[0] {
	case encRaw:
		return buf[1:], nil
	case encLZ4:
		return lz4.UncompressAllocHdr(nil, buf[1:])
	}
	return nil, errors.Errorf("unknown encoding %d", buf[0])
}
