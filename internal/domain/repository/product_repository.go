package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// ProductFilter criterios de búsqueda para el listado de productos.
type ProductFilter struct {
	Search     string // busca por nombre (ILIKE)
	CategoryID string // filtra por categoría exacta
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto hasta el commit (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateQuantity actualiza solo la cantidad (usado por el motor de movimientos).
	UpdateQuantity(productID string, quantity int) error
	List(filter ProductFilter) ([]*entity.Product, int, error)
	Delete(id string) error
}
