// Package store is the persistence layer: a multi-table embedded
// transactional key-value store mapping indexed roots to per-root file
// tables, backed by go.etcd.io/bbolt. Buckets stand in for named tables —
// bbolt gives one transaction per commit and snapshot-isolated readers.
package store

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"

	"github.com/dohuyhoang93/deepsearch-go/internal/model"
	"github.com/dohuyhoang93/deepsearch-go/internal/normalize"
)

// ErrUnavailable wraps failures opening or using the underlying database.
var ErrUnavailable = errors.New("store unavailable")

// ErrLocationMissing is returned by operations that require a root to
// already be present in the locations table.
var ErrLocationMissing = errors.New("location missing")

const (
	locationsBucket = "locations"
	indexPrefix     = "index_"
	recordSchemaTag = byte(1)
)

var logger = log.New(os.Stderr, "deepsearch/store: ", log.LstdFlags)

// Store owns the on-disk bbolt file. It is meant to be held exclusively by
// one worker goroutine; bbolt itself serializes writers and gives readers a
// consistent snapshot.
type Store struct {
	db *bolt.DB

	mu sync.Mutex // serializes get-or-create so table name allocation stays idempotent
}

// Open creates or opens the database at path, ensures the locations bucket
// exists, and sweeps any index_* bucket not referenced by a location —
// the recovery path for a rescan that crashed before its swap committed.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, path, err)
	}

	s := &Store{db: db}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(locationsBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ensure locations bucket: %v", ErrUnavailable, err)
	}

	if err := s.sweepOrphans(); err != nil {
		logger.Printf("orphan sweep failed (continuing): %v", err)
	}

	return s, nil
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// sweepOrphans drops any index_-prefixed bucket that no location points to.
func (s *Store) sweepOrphans() error {
	referenced := make(map[string]bool)
	var orphans []string

	err := s.db.Update(func(tx *bolt.Tx) error {
		locs := tx.Bucket([]byte(locationsBucket))
		_ = locs.ForEach(func(_, table []byte) error {
			referenced[string(table)] = true
			return nil
		})

		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			n := string(name)
			if strings.HasPrefix(n, indexPrefix) && !referenced[n] {
				orphans = append(orphans, n)
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	if len(orphans) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range orphans {
			if err := tx.DeleteBucket([]byte(name)); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			logger.Printf("swept orphan table %s", name)
		}
		return nil
	})
}

// TableNameFor returns the deterministic initial table name for a root.
func TableNameFor(root string) string {
	return fmt.Sprintf("%s%x", indexPrefix, md5.Sum([]byte(root)))
}

// RescanTableNameFor returns a side-table name for a rescan, mixing the root
// hash with a unix-second timestamp plus a short disambiguator so two
// rescans landing in the same second never collide.
func RescanTableNameFor(root string, now time.Time, disambiguator string) string {
	base := fmt.Sprintf("%s_%d", TableNameFor(root), now.Unix())
	if disambiguator == "" {
		return base
	}
	return base + "_" + disambiguator
}

// ListLocations enumerates the locations table.
func (s *Store) ListLocations() ([]model.Location, error) {
	var out []model.Location
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(locationsBucket))
		return b.ForEach(func(root, table []byte) error {
			out = append(out, model.Location{Root: string(root), Table: string(table)})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list locations: %v", ErrUnavailable, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Root < out[j].Root })
	return out, nil
}

// GetOrCreateTableFor returns the table name for root, creating and
// registering one on first call. Idempotent across repeated calls for the
// same root (guarded by s.mu so concurrent callers on the same Store never
// race to create two entries).
func (s *Store) GetOrCreateTableFor(root string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tableName string
	err := s.db.Update(func(tx *bolt.Tx) error {
		locs := tx.Bucket([]byte(locationsBucket))
		if existing := locs.Get([]byte(root)); existing != nil {
			tableName = string(existing)
			return nil
		}
		tableName = TableNameFor(root)
		if _, err := tx.CreateBucketIfNotExists([]byte(tableName)); err != nil {
			return err
		}
		return locs.Put([]byte(root), []byte(tableName))
	})
	if err != nil {
		return "", fmt.Errorf("%w: get-or-create table for %s: %v", ErrUnavailable, root, err)
	}
	return tableName, nil
}

// WriteBatch inserts or overwrites records into table in one transaction,
// creating the table bucket if it doesn't already exist (the rescan side
// table is created this way before it is ever referenced by a location).
func (s *Store) WriteBatch(table string, records []model.PathRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(table))
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := b.Put([]byte(rec.RelPath), encodeRecord(rec.Record)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: write batch to %s: %v", ErrUnavailable, table, err)
	}
	return nil
}

// TableLen returns the number of records in table.
func (s *Store) TableLen(table string) (uint64, error) {
	var n uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		n = uint64(b.Stats().KeyN)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: table len %s: %v", ErrUnavailable, table, err)
	}
	return n, nil
}

// DeleteLocation drops root's current table and its locations entry in one
// transaction. A no-op if root isn't present.
func (s *Store) DeleteLocation(root string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		locs := tx.Bucket([]byte(locationsBucket))
		table := locs.Get([]byte(root))
		if table == nil {
			return nil
		}
		if err := tx.DeleteBucket(table); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		return locs.Delete([]byte(root))
	})
	if err != nil {
		return fmt.Errorf("%w: delete location %s: %v", ErrUnavailable, root, err)
	}
	return nil
}

// SwapLocationTable atomically points root at newTable and returns the
// table it previously pointed to. Fails with ErrLocationMissing if root
// isn't registered.
func (s *Store) SwapLocationTable(root, newTable string) (string, error) {
	var oldTable string
	err := s.db.Update(func(tx *bolt.Tx) error {
		locs := tx.Bucket([]byte(locationsBucket))
		existing := locs.Get([]byte(root))
		if existing == nil {
			return ErrLocationMissing
		}
		oldTable = string(existing)
		return locs.Put([]byte(root), []byte(newTable))
	})
	if err != nil {
		if errors.Is(err, ErrLocationMissing) {
			return "", fmt.Errorf("%w: %s", ErrLocationMissing, root)
		}
		return "", fmt.Errorf("%w: swap location table for %s: %v", ErrUnavailable, root, err)
	}
	return oldTable, nil
}

// DropTable deletes a table bucket outright. Used by the rescan commit
// stage to drop the superseded table after the swap lands.
func (s *Store) DropTable(table string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(table))
		if err == bolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: drop table %s: %v", ErrUnavailable, table, err)
	}
	return nil
}

// kv is a copied key/value pair, valid beyond the transaction that produced
// it — bbolt's own []byte values are only valid for the transaction's
// lifetime, so every row is copied out before the view closes.
type kv struct {
	key   []byte
	value []byte
}

// SearchInTable normalizes query, splits it into tokens and returns every
// relative path whose record contains all tokens. Decoding and the
// token-containment predicate run in parallel across shards of the table
// once all rows have been copied out of the read transaction.
func (s *Store) SearchInTable(table, query string) ([]string, error) {
	tokens := normalize.Tokens(normalize.String(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	var rows []kv
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(table))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			rows = append(rows, kv{key: append([]byte(nil), k...), value: append([]byte(nil), v...)})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search in %s: %v", ErrUnavailable, table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	const shardSize = 2048
	results := make([][]string, (len(rows)+shardSize-1)/shardSize)

	var g errgroup.Group
	for shard := range results {
		start := shard * shardSize
		end := start + shardSize
		if end > len(rows) {
			end = len(rows)
		}
		g.Go(func() error {
			var matched []string
			for _, row := range rows[start:end] {
				rec, ok := decodeRecord(row.value)
				if !ok {
					logger.Printf("skipping undecodable record for key %q in %s", row.key, table)
					continue
				}
				if normalize.ContainsAllTokens(rec.NormalizedName, tokens) {
					matched = append(matched, string(row.key))
				}
			}
			results[shard] = matched
			return nil
		})
	}
	_ = g.Wait()

	var out []string
	for _, shard := range results {
		out = append(out, shard...)
	}
	return out, nil
}

// encodeRecord lays FileRecord out as: 1 byte schema tag, 8 bytes big-endian
// modified time, then the normalized name's raw bytes.
func encodeRecord(r model.FileRecord) []byte {
	buf := make([]byte, 1+8+len(r.NormalizedName))
	buf[0] = recordSchemaTag
	binary.BigEndian.PutUint64(buf[1:9], r.ModifiedTime)
	copy(buf[9:], r.NormalizedName)
	return buf
}

func decodeRecord(b []byte) (model.FileRecord, bool) {
	if len(b) < 9 || b[0] != recordSchemaTag {
		return model.FileRecord{}, false
	}
	return model.FileRecord{
		ModifiedTime:   binary.BigEndian.Uint64(b[1:9]),
		NormalizedName: string(bytes.Clone(b[9:])),
	}, true
}
