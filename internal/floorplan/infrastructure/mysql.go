package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"mesaplan/internal/config"
)

func OpenMySQL(cfg config.MySQLConfig) (*sql.DB, error) {
	if err := ensureDatabaseExists(cfg); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDatabaseExists(cfg config.MySQLConfig) error {
	dbName := strings.TrimSpace(cfg.DBName)
	if dbName == "" {
		return fmt.Errorf("empty DB_NAME")
	}

	adminDSN := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/?charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port,
	)

	adminDB, err := sql.Open("mysql", adminDSN)
	if err != nil {
		return err
	}
	defer adminDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := adminDB.PingContext(ctx); err != nil {
		return err
	}

	stmt := fmt.Sprintf(
		"CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci",
		strings.ReplaceAll(dbName, "`", "``"),
	)
	_, createErr := adminDB.ExecContext(ctx, stmt)
	if createErr == nil {
		return nil
	}

	// If the user lacks CREATE DATABASE but can connect to an existing DB,
	// allow startup.
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("create database %q failed: %v; fallback connection failed: %w", dbName, createErr, err)
	}
	return nil
}

func ensureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS floor_areas (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(120) NOT NULL UNIQUE,
			description VARCHAR(255) NOT NULL DEFAULT '',
			x DOUBLE NOT NULL DEFAULT 0,
			y DOUBLE NOT NULL DEFAULT 0,
			width DOUBLE NOT NULL DEFAULT 0,
			height DOUBLE NOT NULL DEFAULT 0,
			color VARCHAR(32) NOT NULL DEFAULT ''
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS floor_tables (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			number INT NOT NULL UNIQUE,
			name VARCHAR(120) NOT NULL DEFAULT '',
			capacity INT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'FREE',
			position_x DOUBLE NOT NULL DEFAULT 0,
			position_y DOUBLE NOT NULL DEFAULT 0,
			shape VARCHAR(16) NOT NULL DEFAULT 'square',
			width DOUBLE NOT NULL DEFAULT 80,
			height DOUBLE NOT NULL DEFAULT 0,
			area VARCHAR(120) NOT NULL DEFAULT '',
			current_order_id VARCHAR(64) NOT NULL DEFAULT '',
			current_reservation_id VARCHAR(64) NOT NULL DEFAULT '',
			active TINYINT(1) NOT NULL DEFAULT 1
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS floor_reservations (
			id VARCHAR(64) PRIMARY KEY,
			table_id BIGINT NOT NULL,
			customer_name VARCHAR(160) NOT NULL,
			customer_phone VARCHAR(40) NOT NULL,
			customer_email VARCHAR(160) NOT NULL DEFAULT '',
			reservation_date VARCHAR(10) NOT NULL,
			reservation_time VARCHAR(5) NOT NULL,
			duration_minutes INT NOT NULL,
			party_size INT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'confirmed',
			INDEX idx_reservations_table (table_id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS floor_orders (
			id VARCHAR(64) PRIMARY KEY,
			table_id BIGINT NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'open',
			INDEX idx_orders_table (table_id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS floor_order_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(64) NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			product_name VARCHAR(160) NOT NULL,
			quantity INT NOT NULL,
			unit_price DOUBLE NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT '',
			INDEX idx_items_order (order_id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS floor_layout (
			id TINYINT PRIMARY KEY,
			canvas_width DOUBLE NOT NULL,
			canvas_height DOUBLE NOT NULL,
			show_grid TINYINT(1) NOT NULL DEFAULT 1,
			locked TINYINT(1) NOT NULL DEFAULT 0,
			background VARCHAR(255) NOT NULL DEFAULT ''
		) ENGINE=InnoDB`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
