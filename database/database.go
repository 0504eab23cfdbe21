package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openpulse/openpulse/config"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	// cascade deletes depend on foreign keys being on for every pooled
	// connection, hence the DSN parameter instead of a one-off PRAGMA
	db, err = sql.Open("sqlite3", cfg.DBUrl+"?_foreign_keys=on")
	if err != nil {
		return
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}
