package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"price-tracker/models"
)

const productsTableSchema = `
	CREATE TABLE IF NOT EXISTS products (
		id VARCHAR(64) NOT NULL,
		user_id VARCHAR(128) NOT NULL,
		document JSON NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		INDEX user_id_index (user_id)
	)`

// MySQLStore keeps each product as a JSON document keyed by id.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// OpenMySQL connects to dsn, retrying the ping with exponential backoff
// until ctx is done.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	waitInterval := 1 * time.Second
	for {
		err := db.PingContext(ctx)
		if err == nil {
			break
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", ctx.Err())
		case <-time.After(waitInterval):
		}
		if waitInterval < 30*time.Second {
			waitInterval *= 2
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// InitializeSchema creates the products table if it doesn't exist
func (s *MySQLStore) InitializeSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, productsTableSchema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	log.Info("products table created/verified successfully")
	return nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var document []byte
	err := s.db.QueryRowContext(ctx, `SELECT document
		FROM products
		WHERE id = ?`, id).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}

	var product models.Product
	if err := json.Unmarshal(document, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	return &product, nil
}

func (s *MySQLStore) PutProduct(ctx context.Context, product *models.Product) error {
	document, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product %s: %w", product.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT
		INTO products (id, user_id, document)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE user_id = VALUES(user_id), document = VALUES(document)`,
		product.ID, product.UserID, document)
	if err != nil {
		return fmt.Errorf("failed to put product %s: %w", product.ID, err)
	}
	return nil
}

func (s *MySQLStore) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

func (s *MySQLStore) ScanProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM products`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to read product row: %w", err)
		}
		var product models.Product
		if err := json.Unmarshal(document, &product); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}
