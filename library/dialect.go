package library

import (
	"fmt"
	"strconv"
	"strings"

	"book-catalog/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// dialect captures what differs between the supported engines. Statements are
// written with `?` placeholders and rebound for engines that number them.
type dialect struct {
	name       string
	driverName string
	numbered   bool // $1, $2, ...
	returning  bool // ids come back through RETURNING instead of LastInsertId
	bootstrap  []string
	schema     []string
}

var dialects = map[string]dialect{
	config.DriverSQLite: {
		name:       config.DriverSQLite,
		driverName: "sqlite3",
		// WAL lets readers proceed while a write is in flight.
		bootstrap: []string{`PRAGMA journal_mode=WAL;`},
		schema: []string{
			`CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            is_available BOOLEAN NOT NULL DEFAULT 1
        );`,
		},
	},
	config.DriverMySQL: {
		name:       config.DriverMySQL,
		driverName: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS books (
            id INT AUTO_INCREMENT PRIMARY KEY,
            title VARCHAR(255) NOT NULL,
            author VARCHAR(255) NOT NULL,
            is_available BOOLEAN NOT NULL DEFAULT TRUE
        );`,
		},
	},
	config.DriverPostgres: {
		name:       config.DriverPostgres,
		driverName: "pgx",
		numbered:   true,
		returning:  true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS books (
            id SERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            is_available BOOLEAN NOT NULL DEFAULT TRUE
        );`,
		},
	},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
	return d, nil
}

// rebind rewrites `?` placeholders as `$n` for engines that need it.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
