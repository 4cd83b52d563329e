package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/venom3333/CPK-GrandNode/config"
	_ "github.com/venom3333/CPK-GrandNode/internal/db/migrations"
	"github.com/venom3333/CPK-GrandNode/models"
)

type Manager struct {
	Db *sql.DB
}

func NewManager(cfg *config.Config) (*Manager, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	manager := &Manager{
		Db: db,
	}

	if err = goose.Up(db, "./internal/db/migrations"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	return manager, nil
}

func (m *Manager) GetOrderByGUID(orderGUID string) (*models.Order, error) {
	var order models.Order
	var paidAt sql.NullTime
	var transactionID sql.NullString

	err := m.Db.QueryRow(`
		SELECT id, order_guid, total, payment_status, authorization_transaction_id, paid_at, created_at
		FROM orders
		WHERE order_guid = $1
	`, orderGUID).Scan(&order.ID, &order.OrderGUID, &order.Total, &order.PaymentStatus, &transactionID, &paidAt, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by guid: %w", err)
	}

	if transactionID.Valid {
		order.AuthorizationTransactionID = transactionID.String
	}
	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}

	return &order, nil
}

func (m *Manager) InsertOrderNote(note models.OrderNote) error {
	_, err := m.Db.Exec(`
        INSERT INTO order_notes (order_id, note, display_to_customer, created_at)
        VALUES ($1, $2, $3, $4)
    `, note.OrderID, note.Note, note.DisplayToCustomer, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order note: %w", err)
	}

	return nil
}

// MarkOrderAsPaid applies the paid transition as a single conditional update:
// orders already paid or cancelled are left alone. The returned bool reports
// whether this call performed the transition.
func (m *Manager) MarkOrderAsPaid(order *models.Order, transactionID string) (bool, error) {
	now := time.Now().UTC()

	result, err := m.Db.Exec(`
		UPDATE orders
		SET payment_status = $1, authorization_transaction_id = $2, paid_at = $3
		WHERE order_guid = $4 AND payment_status NOT IN ($5, $6)
	`, models.PaymentPaid, transactionID, now, order.OrderGUID, models.PaymentPaid, models.PaymentCancelled)
	if err != nil {
		return false, fmt.Errorf("failed to mark order as paid: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	order.PaymentStatus = models.PaymentPaid
	order.AuthorizationTransactionID = transactionID
	order.PaidAt = &now

	return true, nil
}

func (m *Manager) Close() error {
	return m.Db.Close()
}
