// Command import_books loads a YAML catalog into the configured database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"book-catalog/config"
	"book-catalog/library"
	"book-catalog/logging"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("import_books", pflag.ContinueOnError)
	fs.SetOutput(out)
	var (
		file       = fs.StringP("file", "f", "books.yml", "Catalog file to import")
		reset      = fs.Bool("reset", false, "Delete every existing book before importing")
		configPath = fs.String("config", "", "Config file path (default: ./"+config.DefaultPath+")")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, flush, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer flush()

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}
	defer f.Close()
	entries, err := library.LoadCatalog(f)
	if err != nil {
		return err
	}

	manager, err := library.OpenLibraryManager(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer manager.Close()

	if *reset {
		fmt.Fprintln(out, "Removing existing books...")
		n, err := manager.DeleteAll(ctx)
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Fprintf(out, "Removed %d books.\n", n)
	}

	fmt.Fprintf(out, "Importing %d books from %s...\n", len(entries), *file)
	res, err := manager.ImportCatalog(ctx, entries)
	for _, fail := range res.Failed {
		fmt.Fprintf(out, "%s %s by %s: %v\n", color.RedString("ERROR"), fail.Entry.Title, fail.Entry.Author, fail.Err)
	}
	if err != nil {
		return fmt.Errorf("import interrupted after %d books: %w", len(res.Added), err)
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", len(res.Added))
	fmt.Fprintf(out, "Errors: %d\n", len(res.Failed))

	if len(res.Added) > 0 {
		fmt.Fprintln(out, "\nImported books:")
		fmt.Fprintf(out, "%-5s %-30s %-25s %-10s\n", "ID", "Title", "Author", "Available")
		fmt.Fprintln(out, strings.Repeat("-", 73))
		for _, b := range res.Added {
			fmt.Fprintln(out, library.PrettyBook(b))
		}
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d books failed to import", len(res.Failed), len(entries))
	}
	return nil
}
