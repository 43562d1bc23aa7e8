package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"book-catalog/library"

	"github.com/spf13/cobra"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &shell{
				sc:  bufio.NewScanner(a.lines),
				out: a.out,
				mgr: a.mgr,
				ctx: func() (context.Context, context.CancelFunc) { return a.opContext(cmd.Context()) },
			}
			s.run()
			return nil
		},
	}
}

// shell is the line-oriented front end: one command per line, fields are
// prompted for one at a time.
type shell struct {
	sc  *bufio.Scanner
	out io.Writer
	mgr *library.LibraryManager
	ctx func() (context.Context, context.CancelFunc)
}

func (s *shell) run() {
	fmt.Fprintln(s.out, "Welcome to the book catalog!")
	s.help()

	for {
		fmt.Fprint(s.out, "\n> ")
		if !s.sc.Scan() {
			break
		}
		cmd := strings.TrimSpace(s.sc.Text())

		switch cmd {
		case "":
		case "add book", "add":
			s.handleAddBook()
		case "list books", "list":
			s.handleListBooks()
		case "update book", "update":
			s.handleUpdateBook()
		case "delete book", "delete":
			s.handleDeleteBook()
		case "borrow":
			s.handleStatus(true)
		case "return":
			s.handleStatus(false)
		case "help":
			s.help()
		case "exit", "quit":
			fmt.Fprintln(s.out, "Goodbye!")
			return
		default:
			fmt.Fprintln(s.out, "Unknown command. Type 'help' to see the available commands.")
		}
	}
}

func (s *shell) help() {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "  Books: add book, list books, update book, delete book")
	fmt.Fprintln(s.out, "  Circulation: borrow, return")
	fmt.Fprintln(s.out, "  System: help, exit")
}

// ask prints label and returns the next trimmed line; ok is false at end of input.
func (s *shell) ask(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *shell) askID() (int64, bool) {
	raw, more := s.ask("Book ID: ")
	if !more {
		return 0, false
	}
	id, err := parseID(raw)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid book ID: %s\n", raw)
		return 0, false
	}
	return id, true
}

func (s *shell) handleAddBook() {
	title, more := s.ask("Title: ")
	if !more {
		return
	}
	author, more := s.ask("Author: ")
	if !more {
		return
	}

	ctx, cancel := s.ctx()
	defer cancel()
	id, err := s.mgr.AddBook(ctx, title, author)
	if err != nil {
		fail(s.out, "Error adding book: %v", err)
		return
	}
	ok(s.out, "Added book ID %d", id)
}

func (s *shell) handleListBooks() {
	ctx, cancel := s.ctx()
	defer cancel()
	books, err := s.mgr.ListBooks(ctx)
	if err != nil {
		fail(s.out, "Error: %v", err)
		return
	}
	printBooks(s.out, books)
}

func (s *shell) handleUpdateBook() {
	id, more := s.askID()
	if !more {
		return
	}
	title, more := s.ask("New title (blank keeps current): ")
	if !more {
		return
	}
	author, more := s.ask("New author (blank keeps current): ")
	if !more {
		return
	}

	ctx, cancel := s.ctx()
	defer cancel()
	b, err := s.mgr.EditBook(ctx, id, title, author)
	if err != nil {
		fail(s.out, "Error updating book: %v", err)
		return
	}
	ok(s.out, "Updated book ID %d: %s by %s", b.ID, b.Title, b.Author)
}

func (s *shell) handleDeleteBook() {
	id, more := s.askID()
	if !more {
		return
	}

	ctx, cancel := s.ctx()
	b, err := s.mgr.FindBook(ctx, id)
	cancel()
	if err != nil {
		fail(s.out, "Error: %v", err)
		return
	}
	answer, more := s.ask(fmt.Sprintf("Delete %q? [y/N]: ", b.Title))
	if !more || !strings.EqualFold(answer, "y") {
		fmt.Fprintln(s.out, "Cancelled.")
		return
	}

	ctx, cancel = s.ctx()
	defer cancel()
	if err := s.mgr.DeleteBook(ctx, id); err != nil {
		fail(s.out, "Error deleting book: %v", err)
		return
	}
	ok(s.out, "Deleted %q", b.Title)
}

func (s *shell) handleStatus(borrow bool) {
	id, more := s.askID()
	if !more {
		return
	}

	ctx, cancel := s.ctx()
	defer cancel()
	var (
		b   library.Book
		err error
	)
	if borrow {
		b, err = s.mgr.Borrow(ctx, id)
	} else {
		b, err = s.mgr.Return(ctx, id)
	}
	switch {
	case errors.Is(err, library.ErrAlreadyBorrowed):
		warn(s.out, "Book is already borrowed.")
	case errors.Is(err, library.ErrAlreadyAvailable):
		warn(s.out, "Book is already available.")
	case err != nil:
		fail(s.out, "Error updating status: %v", err)
	default:
		ok(s.out, "%q is now %s", b.Title, b.Status())
	}
}
