package db

import (
	"github.com/venom3333/CPK-GrandNode/models"
)

type Database interface {
	GetOrderByGUID(orderGUID string) (*models.Order, error)
	InsertOrderNote(note models.OrderNote) error
	MarkOrderAsPaid(order *models.Order, transactionID string) (bool, error)

	Close() error
}
