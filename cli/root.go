// Package cli wires configuration, logging and the library manager into the
// book-catalog command line.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"book-catalog/config"
	"book-catalog/library"
	"book-catalog/logging"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what the commands share once PersistentPreRunE has run.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	flushLogs func() error
	mgr       *library.LibraryManager

	in    io.Reader
	lines *bufio.Reader // every line-oriented read of in goes through here
	out   io.Writer
	err   io.Writer

	flagConfig      string
	flagNoColor     bool
	flagLogLevel    string
	flagAskPassword bool
}

// Execute is the entry point called from main.
func Execute(version string) {
	a := &app{}
	root := newRootCmd(a, version)
	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd(a *app, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "book-catalog",
		Short: "Keep track of the books in a small library",
		Long: `book-catalog keeps a table of books with their title, author and
whether they are on the shelf or borrowed.

Run 'book-catalog ui' for the interactive form or 'book-catalog shell' for a
line-oriented prompt.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flagConfig, "config", "", "Config file path (default: ./"+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&a.flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().StringVar(&a.flagLogLevel, "log-level", "", "Override the configured log level")
	root.PersistentFlags().BoolVar(&a.flagAskPassword, "ask-password", false, "Prompt for the database password")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// help and shell completion run without a database.
		for c := cmd; c != nil; c = c.Parent() {
			if c.Name() == "help" || c.Name() == "completion" {
				return nil
			}
		}
		return a.setup(cmd)
	}

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newBorrowCmd(a),
		newReturnCmd(a),
		newShellCmd(a),
		newUICmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.in, a.out, a.err = cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()
	a.lines = bufio.NewReader(a.in)
	initColor(a.flagNoColor)

	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.flagLogLevel != "" {
		cfg.Log.Level = a.flagLogLevel
	}
	if a.flagAskPassword {
		pw, err := readPassword(a.in, a.lines, a.err, fmt.Sprintf("Password for %s: ", cfg.Database.Redacted()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Database.Password = pw
	}
	a.cfg = cfg

	a.logger, a.flushLogs, err = logging.New(cfg.Log)
	if err != nil {
		return err
	}

	ctx, cancel := a.opContext(cmd.Context())
	defer cancel()
	a.mgr, err = library.OpenLibraryManager(ctx, cfg.Database, a.logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	return nil
}

func (a *app) close() {
	if a.mgr != nil {
		if err := a.mgr.Close(); err != nil && a.logger != nil {
			a.logger.Warn("closing database", zap.Error(err))
		}
		a.mgr = nil
	}
	if a.flushLogs != nil {
		_ = a.flushLogs()
		a.flushLogs = nil
	}
}

// opContext bounds a single store operation by the configured query timeout.
func (a *app) opContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if a.cfg == nil || a.cfg.Database.QueryTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.cfg.Database.QueryTimeout)
}
