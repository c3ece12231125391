package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida
)

// StockMovement representa un movimiento de stock (entrada o salida).
// Es un registro de auditoría inmutable: se crea una vez y nunca se modifica ni elimina.
type StockMovement struct {
	ID          string
	ProductID   string
	ProductName string // nombre del producto (join, no columna propia)
	Type        string // IN, OUT
	Quantity    int    // siempre positivo; el signo lo da Type
	Notes       string
	CreatedAt   time.Time
}
