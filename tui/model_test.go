package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"book-catalog/config"
	"book-catalog/library"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCatalog(t *testing.T) *library.LibraryManager {
	t.Helper()
	cfg := config.Database{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "lib.db"), AutoMigrate: true}
	mgr, err := library.OpenLibraryManager(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

// loaded returns a model that has already received its first listing.
func loaded(t *testing.T, c Catalog) Model {
	t.Helper()
	m := newModel(context.Background(), c, time.Second)
	return step(t, m, m.loadBooks())
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// act sends an action key and settles the resulting status and reload.
func act(t *testing.T, m Model, k tea.KeyType) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	m = next.(Model)
	require.NotNil(t, cmd, "action must produce a command")

	done, ok := cmd().(actionDoneMsg)
	require.True(t, ok)
	next, reload := m.Update(done)
	m = next.(Model)
	require.NotNil(t, reload)
	return step(t, m, reload())
}

func typeInto(t *testing.T, m Model, field int, text string) Model {
	t.Helper()
	for m.focused != field {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(Model)
	}
	m.inputs[field-focusTitle].SetValue("")
	return step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestAddShowsBookAndClearsForm(t *testing.T) {
	m := loaded(t, newTestCatalog(t))
	assert.Empty(t, m.books)

	m = typeInto(t, m, focusTitle, "Dune")
	m = typeInto(t, m, focusAuthor, "Frank Herbert")
	m = act(t, m, tea.KeyCtrlA)

	require.Len(t, m.books, 1)
	assert.Equal(t, "Dune", m.books[0].Title)
	assert.True(t, m.books[0].Available)
	assert.Equal(t, statusOK, m.kind)
	assert.Empty(t, m.inputs[0].Value())
	assert.Empty(t, m.inputs[1].Value())
	assert.Len(t, m.table.Rows(), 1)
}

func TestAddRejectsBlankFields(t *testing.T) {
	m := loaded(t, newTestCatalog(t))
	m = typeInto(t, m, focusTitle, "Dune")
	m = act(t, m, tea.KeyCtrlA)

	assert.Equal(t, statusWarn, m.kind)
	assert.Equal(t, "Title and Author cannot be empty.", m.status)
	assert.Empty(t, m.books)
	assert.Equal(t, "Dune", m.inputs[0].Value(), "form is kept for correction")
}

func TestBorrowAndReturnSelected(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.AddBook(context.Background(), "Dune", "Herbert")
	require.NoError(t, err)
	m := loaded(t, c)

	m = act(t, m, tea.KeyCtrlB)
	assert.Equal(t, "Book status updated successfully.", m.status)
	assert.False(t, m.books[0].Available)
	assert.Equal(t, "Borrowed", m.table.Rows()[0][3])

	m = act(t, m, tea.KeyCtrlB)
	assert.Equal(t, statusWarn, m.kind)
	assert.Equal(t, "Book is already borrowed.", m.status)

	m = act(t, m, tea.KeyCtrlR)
	assert.True(t, m.books[0].Available)

	m = act(t, m, tea.KeyCtrlR)
	assert.Equal(t, "Book is already available.", m.status)
}

func TestUpdateKeepsBlankField(t *testing.T) {
	c := newTestCatalog(t)
	_, err := c.AddBook(context.Background(), "Dune", "Herbert")
	require.NoError(t, err)
	m := loaded(t, c)

	m = typeInto(t, m, focusAuthor, "Frank Herbert")
	m = act(t, m, tea.KeyCtrlU)

	require.Len(t, m.books, 1)
	assert.Equal(t, "Dune", m.books[0].Title)
	assert.Equal(t, "Frank Herbert", m.books[0].Author)
}

func TestDeleteSelected(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	for _, title := range []string{"A", "B"} {
		_, err := c.AddBook(ctx, title, "X")
		require.NoError(t, err)
	}
	m := loaded(t, c)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, m.table.Cursor())

	m = act(t, m, tea.KeyCtrlD)
	require.Len(t, m.books, 1)
	assert.Equal(t, "A", m.books[0].Title)
	assert.Equal(t, 0, m.table.Cursor())
}

func TestActionsNeedSelection(t *testing.T) {
	m := loaded(t, newTestCatalog(t))

	tests := map[tea.KeyType]string{
		tea.KeyCtrlU: "Please select a row to update.",
		tea.KeyCtrlD: "Please select a book to delete.",
		tea.KeyCtrlB: "Please select a book to update its status.",
		tea.KeyCtrlR: "Please select a book to update its status.",
	}
	for k, want := range tests {
		got := act(t, m, k)
		assert.Equal(t, want, got.status)
		assert.Equal(t, statusWarn, got.kind)
	}
}

type failingCatalog struct{ Catalog }

func (failingCatalog) ListBooks(context.Context) ([]library.Book, error) {
	return nil, &library.StorageError{Op: "list books", Err: errors.New("database is locked")}
}

func TestLoadErrorIsShown(t *testing.T) {
	m := loaded(t, failingCatalog{})
	assert.Equal(t, statusError, m.kind)
	assert.Contains(t, m.status, "database is locked")
	assert.Contains(t, m.View(), "Error loading books")
}

func TestFocusCycle(t *testing.T) {
	m := loaded(t, newTestCatalog(t))
	assert.True(t, m.table.Focused())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusTitle, m.focused)
	assert.False(t, m.table.Focused())
	assert.True(t, m.inputs[0].Focused())

	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, focusTable, m.focused)
	assert.True(t, m.table.Focused())
	assert.False(t, m.inputs[0].Focused())
}

func TestQuit(t *testing.T) {
	m := loaded(t, newTestCatalog(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestProgramWithoutContext(t *testing.T) {
	var ctx context.Context
	p := newProgram(ctx, newTestCatalog(t), time.Second,
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutRenderer(), tea.WithoutSignalHandler())
	go p.Quit()

	final, err := p.Run()
	require.NoError(t, err)
	assert.IsType(t, Model{}, final)
}

func TestCtrlUAndCtrlDAreActionsNotScrolling(t *testing.T) {
	c := newTestCatalog(t)
	for i := 0; i < 30; i++ {
		_, err := c.AddBook(context.Background(), fmt.Sprintf("Book %02d", i), "X")
		require.NoError(t, err)
	}
	m := loaded(t, c)

	assert.Equal(t, []string{"d"}, m.table.KeyMap.HalfPageDown.Keys())
	assert.Equal(t, []string{"u"}, m.table.KeyMap.HalfPageUp.Keys())

	// d still scrolls by half a page.
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	cursor := m.table.Cursor()
	require.Greater(t, cursor, 0)

	// ctrl+d deletes the selected row and leaves the cursor where it was.
	m = act(t, m, tea.KeyCtrlD)
	assert.Len(t, m.books, 29)
	assert.Equal(t, cursor, m.table.Cursor())
	assert.Equal(t, statusOK, m.kind)
}
