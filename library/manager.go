package library

import (
	"context"
	"fmt"
	"io"
	"strings"

	"book-catalog/config"

	"go.uber.org/zap"
)

// LibraryManager sits between the front ends and the store. It owns the
// input checks and the borrow/return policy; the store itself validates
// nothing.
type LibraryManager struct {
	store  BookStore
	closer io.Closer
	logger *zap.Logger
}

// NewLibraryManager wraps an existing store.
func NewLibraryManager(store BookStore, logger *zap.Logger) *LibraryManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	lm := &LibraryManager{store: store, logger: logger}
	if c, ok := store.(io.Closer); ok {
		lm.closer = c
	}
	return lm
}

// OpenLibraryManager opens the configured database and wraps it.
func OpenLibraryManager(ctx context.Context, cfg config.Database, logger *zap.Logger) (*LibraryManager, error) {
	store, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewLibraryManager(store, logger), nil
}

// Close closes the underlying store when it holds resources.
func (lm *LibraryManager) Close() error {
	if lm.closer == nil {
		return nil
	}
	return lm.closer.Close()
}

// ------------------ Book helpers ------------------

// AddBook rejects blank fields and stores the book as available.
func (lm *LibraryManager) AddBook(ctx context.Context, title, author string) (int64, error) {
	title, author = strings.TrimSpace(title), strings.TrimSpace(author)
	if err := validate(title, author); err != nil {
		lm.logger.Warn("book rejected", zap.String("field", err.Field))
		return 0, err
	}
	id, err := lm.store.Create(ctx, title, author)
	if err != nil {
		return 0, err
	}
	lm.logger.Info("book added", zap.Int64("id", id), zap.String("title", title))
	return id, nil
}

func validate(title, author string) *ValidationError {
	if title == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if author == "" {
		return &ValidationError{Field: "author", Err: ErrEmptyAuthor}
	}
	return nil
}

func (lm *LibraryManager) ListBooks(ctx context.Context) ([]Book, error) {
	return lm.store.List(ctx)
}

// FindBook re-reads the table and picks the row with id.
func (lm *LibraryManager) FindBook(ctx context.Context, id int64) (Book, error) {
	books, err := lm.store.List(ctx)
	if err != nil {
		return Book{}, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("book %d: %w", id, ErrBookNotFound)
}

// EditBook changes title and author of an existing book. A blank field keeps
// the stored value and availability is left as it is.
func (lm *LibraryManager) EditBook(ctx context.Context, id int64, title, author string) (Book, error) {
	current, err := lm.FindBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	updated := current
	if t := strings.TrimSpace(title); t != "" {
		updated.Title = t
	}
	if a := strings.TrimSpace(author); a != "" {
		updated.Author = a
	}
	if err := lm.store.Update(ctx, updated.ID, updated.Title, updated.Author, updated.Available); err != nil {
		return Book{}, err
	}
	lm.logger.Info("book updated", zap.Int64("id", id))
	return updated, nil
}

// UpdateBook writes b as given. Like the store, it does not report a missing id.
func (lm *LibraryManager) UpdateBook(ctx context.Context, b Book) error {
	return lm.store.Update(ctx, b.ID, b.Title, b.Author, b.Available)
}

// DeleteBook removes the book; deleting an absent id is not an error.
func (lm *LibraryManager) DeleteBook(ctx context.Context, id int64) error {
	if err := lm.store.Delete(ctx, id); err != nil {
		return err
	}
	lm.logger.Info("book deleted", zap.Int64("id", id))
	return nil
}

// DeleteAll removes every book currently listed and returns how many it removed.
func (lm *LibraryManager) DeleteAll(ctx context.Context) (int, error) {
	books, err := lm.store.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, b := range books {
		if err := lm.store.Delete(ctx, b.ID); err != nil {
			return i, err
		}
	}
	return len(books), nil
}

// ------------------ Circulation ------------------

// Borrow marks an available book as borrowed.
func (lm *LibraryManager) Borrow(ctx context.Context, id int64) (Book, error) {
	return lm.setAvailability(ctx, id, false)
}

// Return puts a borrowed book back on the shelf.
func (lm *LibraryManager) Return(ctx context.Context, id int64) (Book, error) {
	return lm.setAvailability(ctx, id, true)
}

// setAvailability refuses requests for the state the book is already in, so
// the caller can tell the user instead of silently succeeding.
func (lm *LibraryManager) setAvailability(ctx context.Context, id int64, available bool) (Book, error) {
	b, err := lm.FindBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if b.Available == available {
		lm.logger.Warn("status unchanged", zap.Int64("id", id), zap.Bool("available", available))
		if available {
			return b, fmt.Errorf("%q: %w", b.Title, ErrAlreadyAvailable)
		}
		return b, fmt.Errorf("%q: %w", b.Title, ErrAlreadyBorrowed)
	}
	if err := lm.store.UpdateStatus(ctx, id, available); err != nil {
		return Book{}, err
	}
	b.Available = available
	lm.logger.Info("book status updated", zap.Int64("id", id), zap.Bool("available", available))
	return b, nil
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	return fmt.Sprintf("%-5d %-30s %-25s %-10s", b.ID, TruncateString(b.Title, 30), TruncateString(b.Author, 25), b.Status())
}

// TruncateString shortens s to maxLen runes, marking the cut with "...".
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
