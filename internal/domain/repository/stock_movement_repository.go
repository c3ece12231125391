package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// StockMovementRepository define el puerto de persistencia para movimientos de stock.
// Los movimientos son append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// GetByID devuelve el movimiento con el nombre del producto (join).
	GetByID(id string) (*entity.StockMovement, error)
	// List devuelve los movimientos con nombre de producto, más recientes primero.
	List(limit, offset int) ([]*entity.StockMovement, error)
}
