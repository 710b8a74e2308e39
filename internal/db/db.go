package db

import (
	"database/sql"
	"log"

	_ "github.com/go-sql-driver/mysql"
)

func InitDB(dbURL string) *sql.DB {
	db, err := sql.Open("mysql", dbURL)
	if err != nil {
		log.Fatal("failed to open database connection:", err)
	}

	err = db.Ping()
	if err != nil {
		log.Fatal("database is not responding:", err)
	}

	log.Println("connected to database")
	return db
}

func RunMigrations(db *sql.DB) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			total_lent DECIMAL(20,2) NOT NULL DEFAULT 0,
			total_borrowed DECIMAL(20,2) NOT NULL DEFAULT 0,
			net_balance DECIMAL(20,2) NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE KEY idx_email (email),
			UNIQUE KEY idx_username (username)
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id CHAR(36) PRIMARY KEY,
			sender_id CHAR(36) NOT NULL,
			receiver_id CHAR(36) NOT NULL,
			amount DECIMAL(20,2) NOT NULL,
			type VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL,
			remarks VARCHAR(255),
			timestamp DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_sender_id (sender_id),
			INDEX idx_receiver_id (receiver_id),
			INDEX idx_receiver_status (receiver_id, status),
			FOREIGN KEY (sender_id) REFERENCES users(id),
			FOREIGN KEY (receiver_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS friends (
			user_id CHAR(36) NOT NULL,
			friend_id CHAR(36) NOT NULL,
			PRIMARY KEY (user_id, friend_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (friend_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
	}

	for _, q := range queries {
		_, err := db.Exec(q)
		if err != nil {
			log.Fatal("migration failed:", err)
		}
	}
	log.Println("migrations completed")
}
