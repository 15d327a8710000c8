package book

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/nobriot/schnecken-bot-sub001/internal/board"
)

// Store is the on-disk badger directory a book compiles into and loads
// from.
type Store struct {
	db *badger.DB
}

// OpenStore opens (creating if necessary) a badger store at dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("book: open store %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists every entry of b to the store, one key per position hash.
func (s *Store) Save(b *Book) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for hash, moves := range b.entries {
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, hash)

			value := make([]byte, 2*len(moves))
			for i, m := range moves {
				binary.BigEndian.PutUint16(value[i*2:], uint16(m))
			}
			if err := txn.Set(key, value); err != nil {
				return fmt.Errorf("book: store entry %016x: %w", hash, err)
			}
		}
		return nil
	})
}

// Load reads every entry from the store into a fresh, immutable Book.
func (s *Store) Load() (*Book, error) {
	b := New()

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			if len(key) != 8 {
				continue
			}
			hash := binary.BigEndian.Uint64(key)

			err := item.Value(func(val []byte) error {
				for i := 0; i+1 < len(val); i += 2 {
					m := board.Move(binary.BigEndian.Uint16(val[i:]))
					b.add(hash, m)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("book: load store: %w", err)
	}
	return b, nil
}

// LoadFromDir opens dir read-only, loads its contents into memory, and
// closes the database. This is the runtime path: compiling is a separate,
// one-shot offline step.
func LoadFromDir(dir string) (*Book, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.ReadOnly = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("book: open %s read-only: %w", dir, err)
	}
	defer db.Close()

	store := &Store{db: db}
	return store.Load()
}
