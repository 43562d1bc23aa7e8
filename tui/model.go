// Package tui is the full-screen front end: a table of books over a two-field
// form, driven by control-key actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"book-catalog/library"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Catalog is what the screen needs from the library manager.
type Catalog interface {
	AddBook(ctx context.Context, title, author string) (int64, error)
	ListBooks(ctx context.Context) ([]library.Book, error)
	EditBook(ctx context.Context, id int64, title, author string) (library.Book, error)
	DeleteBook(ctx context.Context, id int64) error
	Borrow(ctx context.Context, id int64) (library.Book, error)
	Return(ctx context.Context, id int64) (library.Book, error)
}

const (
	focusTable = iota
	focusTitle
	focusAuthor
	focusCount
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

// booksLoadedMsg carries a fresh listing of the table.
type booksLoadedMsg struct {
	books []library.Book
	err   error
}

// actionDoneMsg reports the outcome of a write. The list is reloaded after
// every one of them.
type actionDoneMsg struct {
	kind      statusKind
	text      string
	clearForm bool
}

// Model is the catalog screen.
type Model struct {
	ctx     context.Context
	catalog Catalog
	timeout time.Duration

	keys   keyMap
	help   help.Model
	table  table.Model
	inputs []textinput.Model

	focused int
	books   []library.Book
	status  string
	kind    statusKind
}

func newModel(ctx context.Context, catalog Catalog, timeout time.Duration) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 5},
			{Title: "Title", Width: 30},
			{Title: "Author", Width: 25},
			{Title: "Available", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
		table.WithKeyMap(tableKeyMap()),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorYellow).
		Bold(true)
	t.SetStyles(s)

	m := Model{
		ctx:     ctx,
		catalog: catalog,
		timeout: timeout,
		keys:    newKeyMap(),
		help:    help.New(),
		table:   t,
		inputs:  make([]textinput.Model, 2),
	}

	const fieldWidth = 42
	for i, placeholder := range []string{"Book title", "Author name"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 200
		in.Width = fieldWidth
		in.Prompt = "│ "
		m.inputs[i] = in
	}
	return m
}

// Run shows the catalog screen until the user quits or ctx is cancelled.
// timeout bounds each individual store call.
func Run(ctx context.Context, catalog Catalog, timeout time.Duration) error {
	if _, err := newProgram(ctx, catalog, timeout).Run(); err != nil {
		return fmt.Errorf("running catalog screen: %w", err)
	}
	return nil
}

func newProgram(ctx context.Context, catalog Catalog, timeout time.Duration, opts ...tea.ProgramOption) *tea.Program {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	return tea.NewProgram(newModel(ctx, catalog, timeout), opts...)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadBooks, textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case booksLoadedMsg:
		if msg.err != nil {
			m.setStatus(statusError, "Error loading books: "+msg.err.Error())
			return m, nil
		}
		m.books = msg.books
		m.table.SetRows(rowsFor(msg.books))
		if n := len(m.books); n > 0 && (m.table.Cursor() < 0 || m.table.Cursor() >= n) {
			m.table.SetCursor(n - 1)
		}
		return m, nil

	case actionDoneMsg:
		m.setStatus(msg.kind, msg.text)
		if msg.clearForm {
			for i := range m.inputs {
				m.inputs[i].Reset()
			}
		}
		return m, m.loadBooks

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Focus):
			return m, m.cycleFocus(msg.String() == "shift+tab")
		case key.Matches(msg, m.keys.Add):
			return m, m.addBook()
		case key.Matches(msg, m.keys.Update):
			return m, m.updateBook()
		case key.Matches(msg, m.keys.Delete):
			return m, m.deleteBook()
		case key.Matches(msg, m.keys.Borrow):
			return m, m.setAvailability(true)
		case key.Matches(msg, m.keys.Return):
			return m, m.setAvailability(false)
		}
	}

	var cmd tea.Cmd
	if m.focused == focusTable {
		m.table, cmd = m.table.Update(msg)
	} else {
		i := m.focused - focusTitle
		m.inputs[i], cmd = m.inputs[i].Update(msg)
	}
	return m, cmd
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.kind, m.status = kind, text
}

func (m *Model) cycleFocus(back bool) tea.Cmd {
	if back {
		m.focused = (m.focused + focusCount - 1) % focusCount
	} else {
		m.focused = (m.focused + 1) % focusCount
	}

	var cmd tea.Cmd
	if m.focused == focusTable {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
	for i := range m.inputs {
		if i == m.focused-focusTitle {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func rowsFor(books []library.Book) []table.Row {
	rows := make([]table.Row, 0, len(books))
	for _, b := range books {
		rows = append(rows, table.Row{strconv.FormatInt(b.ID, 10), b.Title, b.Author, b.Status()})
	}
	return rows
}

// selected returns the book under the table cursor.
func (m Model) selected() (library.Book, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.books) {
		return library.Book{}, false
	}
	return m.books[c], true
}

// ------------------ Commands ------------------

func (m Model) loadBooks() tea.Msg {
	ctx, cancel := m.opContext()
	defer cancel()
	books, err := m.catalog.ListBooks(ctx)
	return booksLoadedMsg{books: books, err: err}
}

func (m Model) opContext() (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(m.ctx)
	}
	return context.WithTimeout(m.ctx, m.timeout)
}

// run turns a store call into a command reporting its outcome.
func (m Model) run(f func(ctx context.Context) actionDoneMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		return f(ctx)
	}
}

func notice(kind statusKind, format string, a ...interface{}) tea.Cmd {
	msg := actionDoneMsg{kind: kind, text: fmt.Sprintf(format, a...)}
	return func() tea.Msg { return msg }
}

func (m Model) addBook() tea.Cmd {
	title, author := m.inputs[0].Value(), m.inputs[1].Value()
	return m.run(func(ctx context.Context) actionDoneMsg {
		id, err := m.catalog.AddBook(ctx, title, author)
		var ve *library.ValidationError
		switch {
		case errors.As(err, &ve):
			return actionDoneMsg{kind: statusWarn, text: "Title and Author cannot be empty."}
		case err != nil:
			return actionDoneMsg{kind: statusError, text: "Error adding book: " + err.Error()}
		}
		return actionDoneMsg{kind: statusOK, text: fmt.Sprintf("Added %q as ID %d.", strings.TrimSpace(title), id), clearForm: true}
	})
}

func (m Model) updateBook() tea.Cmd {
	b, ok := m.selected()
	if !ok {
		return notice(statusWarn, "Please select a row to update.")
	}
	title, author := m.inputs[0].Value(), m.inputs[1].Value()
	if strings.TrimSpace(title) == "" && strings.TrimSpace(author) == "" {
		return notice(statusWarn, "Enter a new title or author for %q.", b.Title)
	}
	return m.run(func(ctx context.Context) actionDoneMsg {
		updated, err := m.catalog.EditBook(ctx, b.ID, title, author)
		if err != nil {
			return actionDoneMsg{kind: statusError, text: "Error updating book: " + err.Error()}
		}
		return actionDoneMsg{kind: statusOK, text: fmt.Sprintf("Updated %q.", updated.Title), clearForm: true}
	})
}

func (m Model) deleteBook() tea.Cmd {
	b, ok := m.selected()
	if !ok {
		return notice(statusWarn, "Please select a book to delete.")
	}
	return m.run(func(ctx context.Context) actionDoneMsg {
		if err := m.catalog.DeleteBook(ctx, b.ID); err != nil {
			return actionDoneMsg{kind: statusError, text: "Error deleting book: " + err.Error()}
		}
		return actionDoneMsg{kind: statusOK, text: fmt.Sprintf("Deleted %q.", b.Title)}
	})
}

func (m Model) setAvailability(borrow bool) tea.Cmd {
	b, ok := m.selected()
	if !ok {
		return notice(statusWarn, "Please select a book to update its status.")
	}
	return m.run(func(ctx context.Context) actionDoneMsg {
		var err error
		if borrow {
			_, err = m.catalog.Borrow(ctx, b.ID)
		} else {
			_, err = m.catalog.Return(ctx, b.ID)
		}
		switch {
		case errors.Is(err, library.ErrAlreadyBorrowed):
			return actionDoneMsg{kind: statusWarn, text: "Book is already borrowed."}
		case errors.Is(err, library.ErrAlreadyAvailable):
			return actionDoneMsg{kind: statusWarn, text: "Book is already available."}
		case err != nil:
			return actionDoneMsg{kind: statusError, text: "Error updating book status: " + err.Error()}
		}
		return actionDoneMsg{kind: statusOK, text: "Book status updated successfully."}
	})
}

// ------------------ View ------------------

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(StyleHeader.Render("Library Management System"))
	b.WriteString("\n\n")

	border := StyleBorder
	if m.focused == focusTable {
		border = StyleBorderFocused
	}
	b.WriteString(border.Render(m.table.View()))
	b.WriteString("\n\n")

	for i, label := range []string{"Title", "Author"} {
		if m.focused == focusTitle+i {
			b.WriteString(formLabelActive.Render("› " + label))
		} else {
			b.WriteString(formLabel.Render(label))
		}
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.statusStyle().Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) statusStyle() lipgloss.Style {
	switch m.kind {
	case statusOK:
		return StyleOK
	case statusWarn:
		return StyleWarn
	case statusError:
		return StyleError
	default:
		return StyleHelp
	}
}
