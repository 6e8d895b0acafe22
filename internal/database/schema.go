package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table the service needs.  Statements are idempotent
// so Migrate can run on each startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(100) NOT NULL,
		role       ENUM('client','counselor') NOT NULL,
		email      VARCHAR(255) NOT NULL,
		auth_code  VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_auth_code (auth_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS counselors (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		contact    VARCHAR(255) NOT NULL DEFAULT '',
		intro_text TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_counselors_user (user_id),
		CONSTRAINT fk_counselors_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS clients (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id         BIGINT UNSIGNED NOT NULL,
		counselor_id    BIGINT UNSIGNED NULL,
		status          ENUM('ongoing','completed') NOT NULL DEFAULT 'ongoing',
		weekly_schedule JSON NULL,
		goal            TEXT NULL,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_clients_user (user_id),
		KEY idx_clients_counselor (counselor_id),
		CONSTRAINT fk_clients_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_clients_counselor FOREIGN KEY (counselor_id) REFERENCES counselors(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS available_times (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		counselor_id BIGINT UNSIGNED NOT NULL,
		timetable    JSON NOT NULL,
		UNIQUE KEY uq_available_times_counselor (counselor_id),
		CONSTRAINT fk_available_times_counselor FOREIGN KEY (counselor_id) REFERENCES counselors(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS emotion_records (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		client_id   BIGINT UNSIGNED NOT NULL,
		record_date DATE NOT NULL,
		answer1     VARCHAR(100) NOT NULL DEFAULT '',
		answer2     VARCHAR(100) NOT NULL DEFAULT '',
		answer3     VARCHAR(100) NOT NULL DEFAULT '',
		emotions    JSON NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_emotion_records_client_date (client_id, record_date),
		CONSTRAINT fk_emotion_records_client FOREIGN KEY (client_id) REFERENCES clients(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema in dependency order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
