// Package pdf rewrites the page order of compiled exam documents for
// fold-in-half duplex printing.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"
)

// DefaultPattern prints page 4 first, then 1, 2, 3 (0-based).
var DefaultPattern = []int{3, 0, 1, 2}

var (
	ErrInvalidDocument = errors.New("not a readable PDF document")
	ErrInvalidPattern  = errors.New("reorder pattern must be a permutation of 0..k-1")
	ErrNoDocuments     = errors.New("no documents to reorder")
)

func init() {
	// Keep pdfcpu from creating a configuration directory in the user's home.
	model.ConfigPath = "disable"
}

// Reorderer applies a fixed per-block page permutation.
type Reorderer struct {
	pattern []int
	log     zerolog.Logger
}

// NewReorderer validates pattern; a nil or empty pattern selects DefaultPattern.
func NewReorderer(pattern []int, log zerolog.Logger) (*Reorderer, error) {
	if len(pattern) == 0 {
		pattern = DefaultPattern
	}
	seen := make([]bool, len(pattern))
	for _, p := range pattern {
		if p < 0 || p >= len(pattern) || seen[p] {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, pattern)
		}
		seen[p] = true
	}
	return &Reorderer{
		pattern: append([]int(nil), pattern...),
		log:     log.With().Str("component", "pdf_reorderer").Logger(),
	}, nil
}

// BlockSize is the pattern length.
func (r *Reorderer) BlockSize() int {
	return len(r.pattern)
}

// NeedsReorder reports whether a document with n pages has at least one full block.
func (r *Reorderer) NeedsReorder(n int) bool {
	return n/len(r.pattern) > 0
}

// Order returns the 0-based source page for every output page of an n-page
// document. Pages past the last full block keep their original order.
func (r *Reorderer) Order(n int) []int {
	k := len(r.pattern)
	blocks := n / k
	order := make([]int, 0, n)
	for b := 0; b < blocks; b++ {
		for _, p := range r.pattern {
			idx := b*k + p
			if idx >= n {
				continue
			}
			order = append(order, idx)
		}
	}
	for idx := blocks * k; idx < n; idx++ {
		order = append(order, idx)
	}
	return order
}

func newConfig() *model.Configuration {
	return model.NewDefaultConfiguration()
}

func read(data []byte) (*model.Context, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidDocument)
	}
	return ctx, nil
}

// ReorderBytes returns data with its pages reordered. Documents shorter than
// one block are returned unchanged.
func (r *Reorderer) ReorderBytes(data []byte) ([]byte, error) {
	ctx, err := read(data)
	if err != nil {
		return nil, err
	}

	n := ctx.PageCount
	if !r.NeedsReorder(n) {
		r.log.Debug().Int("pages", n).Msg("Document shorter than one block, not reordered")
		return data, nil
	}
	if rem := n % len(r.pattern); rem != 0 {
		r.log.Warn().
			Int("pages", n).
			Int("remainder", rem).
			Msg("Page count is not a multiple of the block size, trailing pages kept in order")
	}

	order := r.Order(n)
	pages := make([]int, len(order))
	for i, idx := range order {
		pages[i] = idx + 1
	}

	out, err := pdfcpu.ExtractPages(ctx, pages, false)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(out, &buf); err != nil {
		return nil, fmt.Errorf("write reordered pdf: %w", err)
	}

	r.log.Debug().Int("pages", n).Ints("order", order).Msg("Pages reordered")
	return buf.Bytes(), nil
}

// ReorderMultiple reorders every document and concatenates the results in the given order.
func (r *Reorderer) ReorderMultiple(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	parts := make([][]byte, len(docs))
	for i, doc := range docs {
		out, err := r.ReorderBytes(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}
		parts[i] = out
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	readers := make([]io.ReadSeeker, len(parts))
	for i, p := range parts {
		readers[i] = bytes.NewReader(p)
	}
	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, newConfig()); err != nil {
		return nil, fmt.Errorf("merge documents: %w", err)
	}
	return buf.Bytes(), nil
}

// ReorderFile reads in, reorders it and writes the result to out.
func (r *Reorderer) ReorderFile(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	result, err := r.ReorderBytes(data)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	return writeFile(out, result)
}

// ReorderMultipleFiles is ReorderMultiple for files on disk.
func (r *Reorderer) ReorderMultipleFiles(ins []string, out string) error {
	if len(ins) == 0 {
		return ErrNoDocuments
	}
	docs := make([][]byte, len(ins))
	for i, in := range ins {
		data, err := os.ReadFile(in)
		if err != nil {
			return err
		}
		docs[i] = data
	}
	result, err := r.ReorderMultiple(docs)
	if err != nil {
		return err
	}
	return writeFile(out, result)
}

// Validate reports whether data is a readable PDF and its page count.
func Validate(data []byte) (bool, int) {
	ctx, err := read(data)
	if err != nil {
		return false, 0
	}
	return true, ctx.PageCount
}

// ValidateFile is Validate for a file on disk.
func ValidateFile(path string) (bool, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, 0
	}
	return Validate(data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
