package dto

import "time"

// RegisterMovementRequest body para POST /api/stock-movements.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Type      string `json:"type" validate:"required,oneof=IN OUT"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Notes     string `json:"notes" validate:"omitempty,max=1000"`
}

// MovementResponse salida de un movimiento de stock (con nombre del producto).
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Type        string    `json:"type"`
	Quantity    int       `json:"quantity"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovementListResponse listado de movimientos, más recientes primero.
type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
