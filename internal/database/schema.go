package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the tables in dependency order.  Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(100) NOT NULL DEFAULT '',
		email         VARCHAR(190) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          ENUM('CUSTOMER','ADMIN') NOT NULL DEFAULT 'CUSTOMER',
		is_active     TINYINT(1) NOT NULL DEFAULT 1,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movies (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(200) NOT NULL,
		genre        VARCHAR(60)  NOT NULL DEFAULT '',
		language     VARCHAR(40)  NOT NULL DEFAULT '',
		duration_min INT UNSIGNED NOT NULL DEFAULT 0,
		rating       DECIMAL(3,1) NOT NULL DEFAULT 0,
		status       ENUM('now_showing','upcoming','archived') NOT NULL DEFAULT 'now_showing',
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS theatres (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(150) NOT NULL,
		city       VARCHAR(100) NOT NULL,
		address    VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS screens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		theatre_id BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(60) NOT NULL,
		type       VARCHAR(30) NOT NULL DEFAULT 'standard',
		capacity   INT UNSIGNED NOT NULL,
		status     ENUM('active','inactive') NOT NULL DEFAULT 'active',
		UNIQUE KEY uq_screens_theatre_name (theatre_id, name),
		CONSTRAINT fk_screens_theatre FOREIGN KEY (theatre_id) REFERENCES theatres(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shows (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id        BIGINT UNSIGNED NOT NULL,
		screen_id       BIGINT UNSIGNED NOT NULL,
		starts_at       DATETIME NOT NULL,
		price_tier      VARCHAR(30) NOT NULL DEFAULT 'standard',
		base_price      INT UNSIGNED NOT NULL,
		remaining_seats INT UNSIGNED NOT NULL,
		UNIQUE KEY uq_shows_screen_start (screen_id, starts_at),
		CONSTRAINT fk_shows_movie  FOREIGN KEY (movie_id)  REFERENCES movies(id),
		CONSTRAINT fk_shows_screen FOREIGN KEY (screen_id) REFERENCES screens(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		customer_id    BIGINT UNSIGNED NOT NULL,
		show_id        BIGINT UNSIGNED NOT NULL,
		seats_booked   INT UNSIGNED NOT NULL,
		total_amount   INT UNSIGNED NOT NULL,
		payment_method VARCHAR(20) NOT NULL,
		payment_ref    VARCHAR(64) NULL,
		status         ENUM('confirmed','cancelled') NOT NULL DEFAULT 'confirmed',
		booked_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		cancelled_at   DATETIME NULL,
		KEY idx_bookings_customer (customer_id),
		CONSTRAINT fk_bookings_customer FOREIGN KEY (customer_id) REFERENCES users(id),
		CONSTRAINT fk_bookings_show     FOREIGN KEY (show_id)     REFERENCES shows(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// active_code is NULL for released rows, so the unique key only binds
	// seats that are currently booked.
	`CREATE TABLE IF NOT EXISTS seat_bookings (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id  BIGINT UNSIGNED NOT NULL,
		show_id     BIGINT UNSIGNED NOT NULL,
		seat_code   VARCHAR(8) NOT NULL,
		price       INT UNSIGNED NOT NULL,
		status      ENUM('booked','released') NOT NULL DEFAULT 'booked',
		active_code VARCHAR(8) GENERATED ALWAYS AS (IF(status = 'booked', seat_code, NULL)) STORED,
		UNIQUE KEY uq_seat_bookings_active (show_id, active_code),
		KEY idx_seat_bookings_booking (booking_id),
		CONSTRAINT fk_seat_bookings_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
		CONSTRAINT fk_seat_bookings_show    FOREIGN KEY (show_id)    REFERENCES shows(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
