package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos de stock de forma transaccional
// (IN, OUT) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
// La cantidad resultante del producto nunca puede quedar negativa.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	movRepo  repository.StockMovementRepository
}

// NewRegisterMovementUseCase construye el caso de uso. movRepo (fuera de tx) se usa
// solo para lecturas: GetByID con join y el listado.
func NewRegisterMovementUseCase(txRunner TxRunner, movRepo repository.StockMovementRepository) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner, movRepo: movRepo}
}

// MovementInput entrada para registrar un movimiento de stock.
type MovementInput struct {
	ProductID string
	Type      string // IN, OUT
	Quantity  int    // debe ser > 0
	Notes     string
}

// RecordMovement valida la entrada, inicia una transacción, bloquea la fila del producto
// (SELECT FOR UPDATE), verifica que la salida no deje stock negativo y persiste el
// movimiento junto con la nueva cantidad. Commit si todo ok, Rollback si algo falla.
// Devuelve el movimiento creado con el nombre del producto.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, input MovementInput) (*dto.MovementResponse, error) {
	// Validar antes de tocar almacenamiento
	if input.ProductID == "" || input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if input.Type != entity.MovementTypeIN && input.Type != entity.MovementTypeOUT {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Notes:     input.Notes,
		CreatedAt: now,
	}

	// Inicia transacción; Commit si todo ok, Rollback si algo falla (TxRunner.Run lo hace)
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		// Bloquea la fila del producto hasta el commit para serializar
		// las salidas concurrentes sobre el mismo producto
		product, err := productRepo.GetForUpdate(input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		newQuantity := product.Quantity + input.Quantity
		if input.Type == entity.MovementTypeOUT {
			newQuantity = product.Quantity - input.Quantity
		}
		if newQuantity < 0 {
			return domain.ErrInsufficientStock
		}

		mov.ProductName = product.Name
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		return productRepo.UpdateQuantity(input.ProductID, newQuantity)
	})
	if err != nil {
		return nil, err
	}

	// Relee el movimiento confirmado con el join del producto (id/fecha asignados por el servidor)
	created, err := uc.movRepo.GetByID(mov.ID)
	if err != nil || created == nil {
		// El commit ya ocurrió; si la relectura falla devolvemos lo que tenemos en memoria
		created = mov
	}
	return toMovementResponse(created), nil
}

// RecordMovementFromRequest adapta el request HTTP al caso de uso RecordMovement.
func (uc *RegisterMovementUseCase) RecordMovementFromRequest(ctx context.Context, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	return uc.RecordMovement(ctx, MovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Notes:     in.Notes,
	})
}

// ListMovements devuelve los movimientos con nombre de producto, más recientes primero.
func (uc *RegisterMovementUseCase) ListMovements(limit, offset int) ([]dto.MovementResponse, error) {
	list, err := uc.movRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementResponse(m))
	}
	return items, nil
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	return &dto.MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}
