package database

import (
	"bytes"
	"database/sql"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
)

const sqliteDriver = "sqlite3_inkwell"

var registerSQLite sync.Once

// sqliteDriverName registers, once, a go-sqlite3 driver whose connections replace the
// built-in lower() with a Unicode-aware one. SQLite's own lower() folds ASCII only, which
// breaks case-insensitive search on titles like "École".
func sqliteDriverName() string {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("lower", unicodeLower, true)
			},
		})
	})
	return sqliteDriver
}

// unicodeLower keeps lower()'s contract: text and blobs are folded, NULL and numbers pass
// through unchanged.
func unicodeLower(v interface{}) interface{} {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		return bytes.ToLower(s)
	default:
		return v
	}
}
