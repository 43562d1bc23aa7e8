package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// CatalogEntry is one book in an import file. Available defaults to true.
type CatalogEntry struct {
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Available *bool  `yaml:"available,omitempty"`
}

type catalogFile struct {
	Books []CatalogEntry `yaml:"books"`
}

// LoadCatalog decodes a YAML document of the form
//
//	books:
//	  - title: Dune
//	    author: Frank Herbert
//	    available: false
//
// Unknown keys and entries without a title or author are rejected.
func LoadCatalog(r io.Reader) ([]CatalogEntry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return []CatalogEntry{}, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for i, e := range f.Books {
		if err := validate(strings.TrimSpace(e.Title), strings.TrimSpace(e.Author)); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i+1, err)
		}
	}
	if f.Books == nil {
		f.Books = []CatalogEntry{}
	}
	return f.Books, nil
}

// ImportFailure records an entry that could not be stored.
type ImportFailure struct {
	Entry CatalogEntry
	Err   error
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Added  []Book
	Failed []ImportFailure
}

// ImportCatalog adds every entry, marking the ones flagged unavailable as
// borrowed. A failing entry is recorded, any row it created is removed, and
// the import moves on; only a cancelled context stops it early.
func (lm *LibraryManager) ImportCatalog(ctx context.Context, entries []CatalogEntry) (ImportResult, error) {
	var res ImportResult
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		id, err := lm.AddBook(ctx, e.Title, e.Author)
		if err != nil {
			res.Failed = append(res.Failed, ImportFailure{Entry: e, Err: err})
			continue
		}
		b := Book{ID: id, Title: strings.TrimSpace(e.Title), Author: strings.TrimSpace(e.Author), Available: true}

		if e.Available != nil && !*e.Available {
			if err := lm.store.UpdateStatus(ctx, id, false); err != nil {
				// Remove the row so a failed entry leaves nothing behind.
				if derr := lm.store.Delete(ctx, id); derr != nil {
					err = errors.Join(err, derr)
				}
				lm.logger.Warn("import entry rolled back", zap.Int64("id", id), zap.Error(err))
				res.Failed = append(res.Failed, ImportFailure{Entry: e, Err: err})
				continue
			}
			b.Available = false
		}
		res.Added = append(res.Added, b)
	}

	lm.logger.Info("catalog imported", zap.Int("added", len(res.Added)), zap.Int("failed", len(res.Failed)))
	return res, nil
}
