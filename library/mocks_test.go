package library

import (
	"context"
	"sort"
)

// This file contains test doubles for the BookStore interface.

type mockBookStore struct {
	CreateFunc       func(ctx context.Context, title, author string) (int64, error)
	ListFunc         func(ctx context.Context) ([]Book, error)
	UpdateFunc       func(ctx context.Context, id int64, title, author string, available bool) error
	UpdateStatusFunc func(ctx context.Context, id int64, available bool) error
	DeleteFunc       func(ctx context.Context, id int64) error
}

func (m *mockBookStore) Create(ctx context.Context, title, author string) (int64, error) {
	return m.CreateFunc(ctx, title, author)
}

func (m *mockBookStore) List(ctx context.Context) ([]Book, error) {
	return m.ListFunc(ctx)
}

func (m *mockBookStore) Update(ctx context.Context, id int64, title, author string, available bool) error {
	return m.UpdateFunc(ctx, id, title, author, available)
}

func (m *mockBookStore) UpdateStatus(ctx context.Context, id int64, available bool) error {
	return m.UpdateStatusFunc(ctx, id, available)
}

func (m *mockBookStore) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

// memStore is an in-memory BookStore that keeps insertion order and counts
// the writes it receives.
type memStore struct {
	next   int64
	books  map[int64]Book
	writes int
}

func newMemStore(books ...Book) *memStore {
	s := &memStore{books: map[int64]Book{}}
	for _, b := range books {
		s.books[b.ID] = b
		if b.ID > s.next {
			s.next = b.ID
		}
	}
	return s
}

func (s *memStore) Create(_ context.Context, title, author string) (int64, error) {
	s.next++
	s.writes++
	s.books[s.next] = Book{ID: s.next, Title: title, Author: author, Available: true}
	return s.next, nil
}

func (s *memStore) List(_ context.Context) ([]Book, error) {
	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) Update(_ context.Context, id int64, title, author string, available bool) error {
	s.writes++
	if _, ok := s.books[id]; ok {
		s.books[id] = Book{ID: id, Title: title, Author: author, Available: available}
	}
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, id int64, available bool) error {
	s.writes++
	if b, ok := s.books[id]; ok {
		b.Available = available
		s.books[id] = b
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	s.writes++
	delete(s.books, id)
	return nil
}
