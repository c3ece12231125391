package entity

import "time"

// Category representa una categoría de productos. El nombre es único.
// Al eliminarla, los productos asociados quedan sin categoría (FK ON DELETE SET NULL).
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
