package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

type tableDef struct {
	name string
	ddl  string
}

var tables = []tableDef{
	{"users", `CREATE TABLE users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"buses", `CREATE TABLE buses (
		bus_number VARCHAR(32) NOT NULL PRIMARY KEY,
		bus_name VARCHAR(128) NOT NULL DEFAULT '',
		operator_id BIGINT NOT NULL,
		KEY idx_buses_operator (operator_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"trips", `CREATE TABLE trips (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		route_number VARCHAR(32) NOT NULL,
		bus_number VARCHAR(32) NOT NULL,
		trip_date DATE NOT NULL,
		departure_time DATETIME NOT NULL,
		arrival_time DATETIME NOT NULL,
		total_seats INT NOT NULL,
		price DECIMAL(12,2) NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL,
		KEY idx_trips_bus (bus_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"trip_seats", `CREATE TABLE trip_seats (
		trip_id BIGINT NOT NULL,
		seat_number INT NOT NULL,
		category VARCHAR(32) NOT NULL,
		held_at DATETIME NULL,
		PRIMARY KEY (trip_id, seat_number),
		KEY idx_trip_seats_hold (category, held_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"bookings", `CREATE TABLE bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		trip_id BIGINT NOT NULL,
		bus_number VARCHAR(32) NOT NULL,
		passenger_name VARCHAR(128) NOT NULL,
		mobile_number VARCHAR(32) NOT NULL,
		email VARCHAR(255) NOT NULL,
		seat_number INT NOT NULL,
		boarding_place VARCHAR(128) NOT NULL,
		destination_place VARCHAR(128) NOT NULL,
		total_price DECIMAL(12,2) NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL,
		booking_token VARCHAR(128) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		KEY idx_bookings_trip (trip_id),
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_bus (bus_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	{"payments", `CREATE TABLE payments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		payment_method VARCHAR(32) NOT NULL,
		name_on_card VARCHAR(128) NOT NULL,
		card_number VARCHAR(32) NOT NULL,
		expiry_date VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL,
		transaction_id CHAR(36) NOT NULL,
		payment_date DATETIME NOT NULL,
		UNIQUE KEY uq_payments_booking (booking_id),
		UNIQUE KEY uq_payments_tx (transaction_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
}

// EnsureSchema creates any missing table. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	for _, t := range tables {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
		log.Printf("[DB] action=create_table msg=%s", t.name)
	}
	return nil
}
