package cli

import (
	"errors"
	"fmt"
	"strconv"

	"book-catalog/library"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book ID: %s", s)
	}
	return id, nil
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <author>",
		Short: "Add a book; new books start out available",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.opContext(cmd.Context())
			defer cancel()

			id, err := a.mgr.AddBook(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("adding book: %w", err)
			}
			ok(a.out, "Added book ID %d", id)
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every book in insertion order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.opContext(cmd.Context())
			defer cancel()

			books, err := a.mgr.ListBooks(ctx)
			if err != nil {
				return fmt.Errorf("listing books: %w", err)
			}

			switch output {
			case "table":
				printBooks(a.out, books)
			case "yaml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(map[string][]library.Book{"books": books}); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown output format %q (want table or yaml)", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table or yaml")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var title, author string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the title or author of a book",
		Long: `Change the title or author of a book.
Flags left out keep the stored value; availability is not touched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if title == "" && author == "" {
				return errors.New("nothing to update: pass --title and/or --author")
			}

			ctx, cancel := a.opContext(cmd.Context())
			defer cancel()

			b, err := a.mgr.EditBook(ctx, id, title, author)
			if err != nil {
				return fmt.Errorf("updating book: %w", err)
			}
			ok(a.out, "Updated book ID %d: %s by %s", b.ID, b.Title, b.Author)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&author, "author", "", "New author")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := a.opContext(cmd.Context())
			defer cancel()

			b, err := a.mgr.FindBook(ctx, id)
			if errors.Is(err, library.ErrBookNotFound) {
				warn(a.out, "No book with ID %d", id)
				return nil
			}
			if err != nil {
				return fmt.Errorf("deleting book: %w", err)
			}
			if err := a.mgr.DeleteBook(ctx, id); err != nil {
				return fmt.Errorf("deleting book: %w", err)
			}
			ok(a.out, "Deleted %q", b.Title)
			return nil
		},
	}
}

func newBorrowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <id>",
		Short: "Mark a book as borrowed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.circulate(cmd, args[0], true)
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return <id>",
		Short: "Mark a borrowed book as available again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.circulate(cmd, args[0], false)
		},
	}
}

func (a *app) circulate(cmd *cobra.Command, arg string, borrow bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(cmd.Context())
	defer cancel()

	var b library.Book
	if borrow {
		b, err = a.mgr.Borrow(ctx, id)
	} else {
		b, err = a.mgr.Return(ctx, id)
	}
	switch {
	case errors.Is(err, library.ErrAlreadyBorrowed):
		warn(a.out, "Book is already borrowed.")
		return nil
	case errors.Is(err, library.ErrAlreadyAvailable):
		warn(a.out, "Book is already available.")
		return nil
	case err != nil:
		return fmt.Errorf("updating status: %w", err)
	}
	ok(a.out, "%q is now %s", b.Title, b.Status())
	return nil
}
