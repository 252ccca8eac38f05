package db

import (
	"log/slog"
	"os"
	"path/filepath"

	"fanhub/config"
	"fanhub/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

var conf config.Configuration

func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

// Connect opens the configured database (sqlite3 by default) and runs AutoMigrate
// when auto_migrate is on.
func Connect(logger *slog.Logger) (*gorm.DB, error) {
	database := conf.Database
	if database == "" {
		database = "sqlite3"
	}

	var (
		db  *gorm.DB
		err error
	)

	if database == "postgres" || database == "postgresql" {
		logger.Info("connecting to postgres", "host", conf.DbHost, "db", conf.DbName)
		path := "host=" + conf.DbHost + " port=" + conf.DbPort
		path += " user=" + conf.DbUser + " dbname=" + conf.DbName
		path += " password=" + conf.DbPass + " sslmode=disable"
		db, err = gorm.Open("postgres", path)
	} else {
		file := conf.DbPath
		if file == "" {
			file = "db/fanhub.db"
		}
		logger.Info("connecting to sqlite3", "path", file)
		db, err = OpenSQLite(file)
	}

	if err != nil {
		logger.Error("database connection failed", "error", err)
		return nil, err
	}

	db.LogMode(conf.Env == "dev")

	if conf.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// OpenSQLite opens a sqlite database. ":memory:" is pinned to a single connection
// so every query sees the same in-memory schema.
func OpenSQLite(file string) (*gorm.DB, error) {
	if file != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open("sqlite3", file)
	if err != nil {
		return nil, err
	}
	if file == ":memory:" {
		db.DB().SetMaxOpenConns(1)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...).Error
}
