package kvstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// BadgerStore is the persistent Store implementation. TTLs map directly onto
// Badger entry expirations.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

func NewBadgerStore(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at '%s': %w", path, err)
	}
	return &BadgerStore{db: db, logger: logger.WithGroup("kvstore")}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get '%s': %w", key, err)
	}
	return value, nil
}

func (s *BadgerStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("badger set '%s': %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var next int64
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		switch err {
		case nil:
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			current, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				current = 0
			}
			next = current + 1
			entry := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(next, 10)))
			// Keep the remaining window rather than starting a new one.
			if exp := item.ExpiresAt(); exp > 0 {
				remaining := time.Until(time.Unix(int64(exp), 0))
				if remaining <= 0 {
					remaining = time.Second
				}
				entry = entry.WithTTL(remaining)
			}
			return txn.SetEntry(entry)
		case badger.ErrKeyNotFound:
			next = 1
			entry := badger.NewEntry([]byte(key), []byte("1"))
			if ttl > 0 {
				entry = entry.WithTTL(ttl)
			}
			return txn.SetEntry(entry)
		default:
			return err
		}
	})
	if err != nil {
		return 0, fmt.Errorf("badger increment '%s': %w", key, err)
	}
	return next, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
