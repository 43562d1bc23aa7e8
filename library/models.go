package library

import "context"

// Book is a single catalog entry. Available is true while the book is on the
// shelf and false while it is borrowed.
type Book struct {
	ID        int64  `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Author    string `json:"author" yaml:"author"`
	Available bool   `json:"available" yaml:"available"`
}

// Status renders the availability flag the way the front ends show it.
func (b Book) Status() string {
	if b.Available {
		return "Available"
	}
	return "Borrowed"
}

// BookStore is the persistence boundary for books. Update, UpdateStatus and
// Delete succeed silently when no row matches id.
type BookStore interface {
	Create(ctx context.Context, title, author string) (int64, error)
	List(ctx context.Context) ([]Book, error)
	Update(ctx context.Context, id int64, title, author string, available bool) error
	UpdateStatus(ctx context.Context, id int64, available bool) error
	Delete(ctx context.Context, id int64) error
}
