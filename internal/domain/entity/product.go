package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// Quantity solo cambia a través de movimientos de stock; nunca puede quedar negativo.
type Product struct {
	ID           string
	Name         string
	CategoryID   *string // nil si el producto no tiene categoría asignada
	CategoryName string  // nombre de la categoría (join, no columna propia)
	Price        decimal.Decimal
	Quantity     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
