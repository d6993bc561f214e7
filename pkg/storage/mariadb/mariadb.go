package mariadb

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/clinicapp/clinic-backend/config"
	_ "github.com/go-sql-driver/mysql"
)

var (
	db   *sql.DB
	once sync.Once
)

// Connect opens the MariaDB connection. Credentials come from the
// environment through config.LoadConfig.
func Connect() *sql.DB {
	once.Do(func() {
		cfg := config.LoadConfig()
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

		var err error
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			log.Fatalf("failed to open database connection: %v", err)
		}

		if err = db.Ping(); err != nil {
			log.Fatalf("failed to ping database: %v", err)
		}
	})

	return db
}

// GetDB returns the already established database connection.
func GetDB() *sql.DB {
	return db
}
