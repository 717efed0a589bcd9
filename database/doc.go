// Package database owns the bun connection: manager and factory for MySQL,
// PostgreSQL and SQLite, health checks with reconnect, versioned migrations,
// foreign keys, SQL seed files, query hooks and driver error classification.
package database
