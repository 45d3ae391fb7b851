package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteDriverName is the database/sql driver used for the main SQLite store.
// It is go-sqlite3 with UnicodeLowerFunc registered on every connection.
const SQLiteDriverName = "sqlite3_bookworm"

// UnicodeLowerFunc folds case with Unicode rules. SQLite's built-in LOWER
// only handles ASCII letters.
const UnicodeLowerFunc = "unicode_lower"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(UnicodeLowerFunc, unicodeLower, true)
		},
	})
}

// NULL arrives as a nil []byte and is returned as NULL.
func unicodeLower(v any) any {
	switch s := v.(type) {
	case string:
		return strings.ToLower(s)
	case []byte:
		if s == nil {
			return nil
		}
		return strings.ToLower(string(s))
	default:
		return v
	}
}

// OpenSQLite returns a gorm dialector for the SQLite file at path.
func OpenSQLite(path string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: SQLiteDriverName, DSN: path})
}

// GormConfig is the configuration every store connection uses. Timestamps
// are written in UTC so text comparisons on SQLite stay ordered.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}
