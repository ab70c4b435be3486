// Package storage keeps generated exam documents.
package storage

import (
	"errors"
	"io"
)

var (
	ErrInvalidKey = errors.New("invalid storage key")
	ErrNotFound   = errors.New("object not found")
)

// Store saves and loads artifacts by key, e.g. "exams/12/<job>/Ma-2_8a_20250324_Komplett.pdf".
type Store interface {
	Put(key string, r io.Reader) (string, error)
	Get(key string) (io.ReadCloser, error)
}
