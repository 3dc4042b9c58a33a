package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema when it does not exist yet.  Background
// workers must only start after this returns.  The statements are
// idempotent; a dedicated migration tool can replace this without the
// rest of the code noticing.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id               CHAR(36) PRIMARY KEY,
			title            VARCHAR(255) NOT NULL,
			description      TEXT NOT NULL,
			duration_minutes INT NOT NULL,
			release_date     DATETIME NOT NULL,
			poster_url       VARCHAR(512) NULL,
			created_at DATETIME NOT NULL,
			created_by VARCHAR(64) NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL,
			updated_by VARCHAR(64) NOT NULL DEFAULT '',
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			deleted_at DATETIME NULL,
			deleted_by VARCHAR(64) NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cinemas (
			id              CHAR(36) PRIMARY KEY,
			organizer_id    VARCHAR(64) NOT NULL,
			name            VARCHAR(255) NOT NULL,
			location        VARCHAR(255) NOT NULL,
			contact_email   VARCHAR(255) NOT NULL,
			approval_status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
			created_at DATETIME NOT NULL,
			created_by VARCHAR(64) NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL,
			updated_by VARCHAR(64) NOT NULL DEFAULT '',
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			deleted_at DATETIME NULL,
			deleted_by VARCHAR(64) NULL,
			INDEX idx_cinemas_organizer (organizer_id)
		)`,
		`CREATE TABLE IF NOT EXISTS auditoriums (
			id          CHAR(36) PRIMARY KEY,
			cinema_id   CHAR(36) NOT NULL,
			name        VARCHAR(255) NOT NULL,
			max_rows    INT NOT NULL,
			max_columns INT NOT NULL,
			layout      JSON NOT NULL,
			created_at DATETIME NOT NULL,
			created_by VARCHAR(64) NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL,
			updated_by VARCHAR(64) NOT NULL DEFAULT '',
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			deleted_at DATETIME NULL,
			deleted_by VARCHAR(64) NULL,
			INDEX idx_auditoriums_cinema (cinema_id),
			CONSTRAINT fk_auditoriums_cinema FOREIGN KEY (cinema_id) REFERENCES cinemas (id)
		)`,
		`CREATE TABLE IF NOT EXISTS showtimes (
			id               CHAR(36) PRIMARY KEY,
			movie_id         CHAR(36) NOT NULL,
			auditorium_id    CHAR(36) NOT NULL,
			starts_at        DATETIME NOT NULL,
			base_price_cents BIGINT NOT NULL,
			seat_state       VARBINARY(16384) NOT NULL,
			version          BIGINT UNSIGNED NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			created_by VARCHAR(64) NOT NULL DEFAULT '',
			updated_at DATETIME NOT NULL,
			updated_by VARCHAR(64) NOT NULL DEFAULT '',
			is_deleted TINYINT(1) NOT NULL DEFAULT 0,
			deleted_at DATETIME NULL,
			deleted_by VARCHAR(64) NULL,
			INDEX idx_showtimes_auditorium (auditorium_id),
			INDEX idx_showtimes_movie (movie_id),
			CONSTRAINT fk_showtimes_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
			CONSTRAINT fk_showtimes_auditorium FOREIGN KEY (auditorium_id) REFERENCES auditoriums (id)
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			id                CHAR(36) PRIMARY KEY,
			user_id           VARCHAR(64) NOT NULL,
			user_email        VARCHAR(255) NOT NULL,
			showtime_id       CHAR(36) NOT NULL,
			booking_reference VARCHAR(16) NOT NULL,
			seats             JSON NOT NULL,
			total_cents       BIGINT NOT NULL,
			status            VARCHAR(16) NOT NULL,
			created_at        DATETIME NOT NULL,
			paid_at           DATETIME NULL,
			is_deleted        TINYINT(1) NOT NULL DEFAULT 0,
			UNIQUE INDEX uq_tickets_reference (booking_reference),
			INDEX idx_tickets_user (user_id),
			INDEX idx_tickets_status_created (status, created_at),
			CONSTRAINT fk_tickets_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes (id)
		)`,
		`CREATE TABLE IF NOT EXISTS outbox_messages (
			id            CHAR(36) PRIMARY KEY,
			event_type    VARCHAR(64) NOT NULL,
			payload       JSON NOT NULL,
			created_at    DATETIME NOT NULL,
			processing_at DATETIME NULL,
			processed_at  DATETIME NULL,
			retry_count   INT NOT NULL DEFAULT 0,
			error_message TEXT NULL,
			INDEX idx_outbox_claim (processed_at, processing_at, created_at)
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
