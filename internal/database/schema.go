package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/lab-seat-reservation/internal/model"
)

// schema is applied in order by Migrate. Every statement is idempotent.
//
// reservations.open_day equals ref_date unless the row is CANCELLED, in which
// case it is NULL. The unique key on (user_id, open_day) therefore allows any
// number of cancelled rows but only one other reservation per student and day.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        student_id    VARCHAR(32)     NOT NULL,
        password_hash VARCHAR(255)    NOT NULL,
        created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_users_student_id (student_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS admins (
        id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        username      VARCHAR(64)     NOT NULL,
        password_hash VARCHAR(255)    NOT NULL,
        created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_admins_username (username)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seats (
        id       INT         NOT NULL,
        room     VARCHAR(8)  NOT NULL,
        bookable TINYINT(1)  NOT NULL DEFAULT 1,
        PRIMARY KEY (id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
        id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        user_id         BIGINT UNSIGNED NOT NULL,
        seat_id         INT             NOT NULL,
        ref_date        DATE            NOT NULL,
        start_hour      TINYINT         NOT NULL,
        end_hour        TINYINT         NOT NULL,
        status          ENUM('ACTIVE','EXPIRED','CANCELLED') NOT NULL DEFAULT 'ACTIVE',
        checkout_at     DATETIME        NULL,
        extension_count TINYINT         NOT NULL DEFAULT 0,
        extended_at     DATETIME        NULL,
        created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
        open_day        DATE GENERATED ALWAYS AS (IF(status = 'CANCELLED', NULL, ref_date)) STORED,
        PRIMARY KEY (id),
        UNIQUE KEY uq_reservations_user_open_day (user_id, open_day),
        KEY idx_reservations_seat_day (seat_id, ref_date, status),
        KEY idx_reservations_day_status (ref_date, status),
        CONSTRAINT fk_reservations_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
        CONSTRAINT fk_reservations_seat FOREIGN KEY (seat_id) REFERENCES seats (id),
        CONSTRAINT chk_reservations_hours CHECK (start_hour >= 8 AND end_hour <= 24 AND start_hour <= end_hour),
        CONSTRAINT chk_reservations_extensions CHECK (extension_count BETWEEN 0 AND 2)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

// SeedSeats upserts every roster seat so reservation rows can reference and
// lock them.
func SeedSeats(ctx context.Context, db *sql.DB, roster model.Roster) error {
	const q = `INSERT INTO seats (id, room, bookable) VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE room = VALUES(room), bookable = VALUES(bookable)`
	for _, s := range roster.Seats() {
		if _, err := db.ExecContext(ctx, q, s.ID, s.Room, s.Bookable); err != nil {
			return fmt.Errorf("seed seat %d: %w", s.ID, err)
		}
	}
	return nil
}
