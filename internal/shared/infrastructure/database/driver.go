package database

import (
	"strconv"
	"strings"
)

// Driver identifies a storage backend.
type Driver string

const (
	// DriverPostgres is a PostgreSQL server reached through pgx.
	DriverPostgres Driver = "postgres"
	// DriverSQLite is an embedded SQLite file, the zero-config default.
	DriverSQLite Driver = "sqlite"
	// DriverMongo is a MongoDB deployment. It only backs the task store.
	DriverMongo Driver = "mongodb"
)

func (d Driver) String() string {
	return string(d)
}

// IsSQL reports whether the driver speaks SQL and can host users and the outbox.
func (d Driver) IsSQL() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite, DriverMongo:
		return true
	default:
		return false
	}
}

// DetectDriver infers the backend from a connection string.
// An empty string selects SQLite.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return DriverMongo
	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "file:"),
		strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return DriverSQLite
	}
	return DriverPostgres
}

// Rebind rewrites '?' placeholders into the positional '$n' form Postgres expects.
// Queries are left untouched for SQLite. Placeholders inside single-quoted
// literals are not rewritten.
func Rebind(d Driver, query string) string {
	if d != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
