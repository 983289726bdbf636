// Package store persists graph-query documents by id.
//
// A [Record] wraps a serialized document with its metadata and a SHA-256
// content hash. Four [Store] backends are provided:
//   - file: one JSON file per record, for local CLI use
//   - sqlite: a single database file (pure Go driver, no cgo)
//   - redis: records as JSON strings with an id index set
//   - mongo: one collection, record id as _id
//
// # Usage
//
//	st, err := store.Open(ctx, store.Config{Backend: "sqlite", Path: "semtk.db"})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	rec, err := store.NewRecord("battery query", doc)
//	err = st.Put(ctx, rec)
//
//	rec, err = st.Get(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // No such record
//	}
//
// All backends are safe for concurrent use.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/7eVeNcO/semtk/pkg/document"
	"github.com/7eVeNcO/semtk/pkg/errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New(errors.ErrCodeRecordNotFound, "record not found")

// Store persists records.
type Store interface {
	// Put inserts or replaces the record with r.ID.
	Put(ctx context.Context, r *Record) error
	// Get returns the record, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete removes the record, or returns an error wrapping ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns every record without its Data, oldest first.
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// Record is a stored document.
type Record struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name" bson:"name"`
	Comments  string          `json:"comments,omitempty" bson:"comments,omitempty"`
	Creator   string          `json:"creator,omitempty" bson:"creator,omitempty"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Hash      string          `json:"hash" bson:"hash"`
	Data      json.RawMessage `json:"data,omitempty" bson:"data,omitempty"`
}

// NewRecord serializes doc into a record with a fresh id.
func NewRecord(name string, doc *document.Document) (*Record, error) {
	text, err := doc.Marshal()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, text); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "compact document")
	}
	data := buf.Bytes()
	return &Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Hash:      Hash(data),
		Data:      data,
	}, nil
}

// Document parses the stored document.
func (r *Record) Document() (*document.Document, error) {
	if len(r.Data) == 0 {
		return nil, errors.New(errors.ErrCodeDecode, "record %s has no data", r.ID)
	}
	return document.Parse(r.Data)
}

// Verify checks Data against Hash.
func (r *Record) Verify() error {
	if got := Hash(r.Data); got != r.Hash {
		return errors.New(errors.ErrCodeInvalidDocument, "record %s: hash mismatch (stored %.12s, computed %.12s)", r.ID, r.Hash, got)
	}
	return nil
}

// encode serializes r for the file and redis backends. Data is written
// byte for byte so that it still matches Hash when read back.
func (r *Record) encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (r *Record) validate() error {
	if r == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record is nil")
	}
	if err := errors.ValidateRecordID(r.ID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record %s: name is required", r.ID)
	}
	return nil
}

// Hash computes a SHA-256 hash of data as 64 hex characters.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// sortRecords orders by creation time, then id.
func sortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
