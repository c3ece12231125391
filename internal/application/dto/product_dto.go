package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// Quantity y Price no pueden ser negativos: la invariante de stock se valida
// también aquí, no solo en el camino de movimientos.
type CreateProductRequest struct {
	Name       string          `json:"name" validate:"required,min=1,max=255"`
	CategoryID *string         `json:"category_id" validate:"omitempty,uuid"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity" validate:"min=0"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
type UpdateProductRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=255"`
	CategoryID *string          `json:"category_id" validate:"omitempty,uuid"`
	Price      *decimal.Decimal `json:"price"`
	Quantity   *int             `json:"quantity" validate:"omitempty,min=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CategoryID   *string         `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
