package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aphasia-lab/pausa/logging"
)

// cacheKeyPrefix versions cached entries. Bump it when the report layout
// or analysis semantics change so stale results are never replayed.
const cacheKeyPrefix = "pausa:v1"

// Cache memoizes successful per-file results across batch runs, backed by
// BadgerDB. Re-running a corpus after an interruption skips every
// recording whose path, size and mtime are unchanged.
type Cache struct {
	db *badger.DB
}

// OpenCache opens (or creates) an on-disk cache in dir.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache: directory is required")
	}
	return openCache(badger.DefaultOptions(dir))
}

// OpenInMemoryCache opens a cache that lives only for the process.
// Used in tests to exercise the real badger engine without disk state.
func OpenInMemoryCache() (*Cache, error) {
	return openCache(badger.DefaultOptions("").WithInMemory(true))
}

func openCache(opts badger.Options) (*Cache, error) {
	opts = opts.WithLogger(badgerLogAdapter{
		logger: logging.WithFields(logging.Fields{
			"component": "batch_cache",
		}),
	})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open: %w", err)
	}
	return &Cache{db: db}, nil
}

// Key identifies a recording by absolute path, size and mtime. Any edit
// to the file invalidates its entry.
func Key(path string, info fs.FileInfo) string {
	return strings.Join([]string{
		cacheKeyPrefix,
		path,
		strconv.FormatInt(info.Size(), 10),
		strconv.FormatInt(info.ModTime().UnixNano(), 10),
	}, "|")
}

// Get looks up a cached result. A miss returns (nil, false, nil).
func (c *Cache) Get(key string) (*FileResult, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get: %w", err)
	}

	var result FileResult
	if err := msgpack.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("cache: decode: %w", err)
	}
	return &result, true, nil
}

// Put stores a successful result under key.
func (c *Cache) Put(key string, result *FileResult) error {
	raw, err := msgpack.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// badgerLogAdapter routes badger's logger onto the repo logger, dropping
// badger's chatty info/debug output.
type badgerLogAdapter struct {
	logger logging.Logger
}

var _ badger.Logger = badgerLogAdapter{}

func (a badgerLogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(nil, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (a badgerLogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogAdapter) Infof(string, ...any) {}

func (badgerLogAdapter) Debugf(string, ...any) {}
