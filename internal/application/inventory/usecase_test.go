package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

// memStore almacén en memoria compartido por los fakes. getForUpdateCalls y
// failCreateMovement permiten verificar cuándo se toca el almacenamiento y
// simular fallas a mitad de escritura.
type memStore struct {
	mu                 sync.Mutex
	products           map[string]*entity.Product
	movements          []*entity.StockMovement
	getForUpdateCalls  int
	failCreateMovement bool
}

func newMemStore() *memStore {
	return &memStore{products: map[string]*entity.Product{}}
}

func (s *memStore) addProduct(id, name string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &entity.Product{ID: id, Name: name, Quantity: quantity}
}

func (s *memStore) quantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

func (s *memStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// fakeProductRepo implementa repository.ProductRepository sobre memStore.
type fakeProductRepo struct{ s *memStore }

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.getForUpdateCalls++
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) UpdateQuantity(productID string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity = quantity
	return nil
}

func (r *fakeProductRepo) List(repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) Delete(string) error { return nil }

// fakeMovementRepo implementa repository.StockMovementRepository sobre memStore.
type fakeMovementRepo struct{ s *memStore }

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failCreateMovement {
		return errors.New("write error")
	}
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			cp := *m
			if p, ok := r.s.products[m.ProductID]; ok {
				cp.ProductName = p.Name
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) List(limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// Más recientes primero: los fakes insertan en orden, se recorre al revés
	var out []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if offset > 0 {
			offset--
			continue
		}
		cp := *r.s.movements[i]
		if p, ok := r.s.products[cp.ProductID]; ok {
			cp.ProductName = p.Name
		}
		out = append(out, &cp)
	}
	return out, nil
}

// fakeTxRunner serializa las transacciones con un mutex (emula el bloqueo de fila)
// y restaura un snapshot del almacén si fn falla (emula el rollback).
type fakeTxRunner struct {
	txMu sync.Mutex
	s    *memStore
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snapshot := r.snapshot()
	err := fn(&fakeMovementRepo{s: r.s}, &fakeProductRepo{s: r.s})
	if err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	products  map[string]entity.Product
	movements []entity.StockMovement
}

func (r *fakeTxRunner) snapshot() storeSnapshot {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := storeSnapshot{products: map[string]entity.Product{}}
	for id, p := range r.s.products {
		snap.products[id] = *p
	}
	for _, m := range r.s.movements {
		snap.movements = append(snap.movements, *m)
	}
	return snap
}

func (r *fakeTxRunner) restore(snap storeSnapshot) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products = map[string]*entity.Product{}
	for id := range snap.products {
		p := snap.products[id]
		r.s.products[id] = &p
	}
	r.s.movements = nil
	for i := range snap.movements {
		m := snap.movements[i]
		r.s.movements = append(r.s.movements, &m)
	}
}

func newUseCase(s *memStore) *inventory.RegisterMovementUseCase {
	return inventory.NewRegisterMovementUseCase(&fakeTxRunner{s: s}, &fakeMovementRepo{s: s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RecordMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_INSumaCantidad(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Teclado", 10)
	uc := newUseCase(s)

	out, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeIN, Quantity: 5, Notes: "compra",
	})
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, 15, s.quantity("p1"), "IN debe sumar la cantidad")
	assert.Equal(t, 1, s.movementCount(), "debe existir exactamente un movimiento")
	assert.Equal(t, entity.MovementTypeIN, out.Type)
	assert.Equal(t, 5, out.Quantity)
	assert.Equal(t, "Teclado", out.ProductName, "la respuesta incluye el nombre del producto")
	assert.Equal(t, "compra", out.Notes)
	assert.NotEmpty(t, out.ID)
}

func TestRecordMovement_OUTRestaCantidad(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Teclado", 10)
	uc := newUseCase(s)

	out, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, s.quantity("p1"))
	assert.Equal(t, entity.MovementTypeOUT, out.Type)
	assert.Equal(t, 3, out.Quantity, "la cantidad del movimiento se guarda positiva")
}

func TestRecordMovement_OUTExactoDejaCero(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Teclado", 4)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, s.quantity("p1"), "sacar todo el stock es válido; negativo no")
}

func TestRecordMovement_StockInsuficiente_SinEfectos(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Teclado", 7)
	uc := newUseCase(s)

	out, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: 8,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, out)

	assert.Equal(t, 7, s.quantity("p1"), "la cantidad no debe cambiar")
	assert.Equal(t, 0, s.movementCount(), "no debe escribirse ningún movimiento")
}

// Escenario de la sección de propiedades: 10 → OUT 3 ok → OUT 8 falla y nada cambia.
func TestRecordMovement_EscenarioSalidasEncadenadas(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Monitor", 10)
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, s.quantity("p1"))
	assert.Equal(t, 1, s.movementCount())

	_, err = uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: 8,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 7, s.quantity("p1"), "la cantidad sigue en 7")
	assert.Equal(t, 1, s.movementCount(), "sigue existiendo solo el primer movimiento")
}

func TestRecordMovement_ProductoInexistente(t *testing.T) {
	s := newMemStore()
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "no-existe", Type: entity.MovementTypeIN, Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, 0, s.movementCount(), "no debe escribirse nada")
}

func TestRecordMovement_EntradaInvalida_NoTocaAlmacenamiento(t *testing.T) {
	cases := []struct {
		name  string
		input inventory.MovementInput
	}{
		{"cantidad cero", inventory.MovementInput{ProductID: "p1", Type: "IN", Quantity: 0}},
		{"cantidad negativa", inventory.MovementInput{ProductID: "p1", Type: "OUT", Quantity: -3}},
		{"tipo inválido", inventory.MovementInput{ProductID: "p1", Type: "TRANSFER", Quantity: 1}},
		{"tipo vacío", inventory.MovementInput{ProductID: "p1", Quantity: 1}},
		{"tipo en minúsculas", inventory.MovementInput{ProductID: "p1", Type: "in", Quantity: 1}},
		{"sin producto", inventory.MovementInput{Type: "IN", Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newMemStore()
			s.addProduct("p1", "Teclado", 10)
			uc := newUseCase(s)

			_, err := uc.RecordMovement(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, s.getForUpdateCalls,
				"la validación debe rechazar antes de leer el producto")
			assert.Equal(t, 10, s.quantity("p1"))
			assert.Equal(t, 0, s.movementCount())
		})
	}
}

func TestRecordMovement_FallaDeEscritura_Rollback(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Teclado", 10)
	s.failCreateMovement = true
	uc := newUseCase(s)

	_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeIN, Quantity: 5,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 10, s.quantity("p1"), "el rollback debe dejar la cantidad original")
	assert.Equal(t, 0, s.movementCount(), "el rollback no deja movimientos parciales")
}

// Dos salidas concurrentes (3 y 4) sobre stock 5: solo una puede confirmar;
// la depleción total nunca supera el stock inicial.
func TestRecordMovement_SalidasConcurrentes_NoSobregiran(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Teclado", 5)
	uc := newUseCase(s)

	quantities := []int{3, 4}
	errs := make([]error, len(quantities))
	var wg sync.WaitGroup
	for i, q := range quantities {
		wg.Add(1)
		go func(i, q int) {
			defer wg.Done()
			_, errs[i] = uc.RecordMovement(context.Background(), inventory.MovementInput{
				ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: q,
			})
		}(i, q)
	}
	wg.Wait()

	var okCount, insufficientCount int
	depleted := 0
	for i, err := range errs {
		switch {
		case err == nil:
			okCount++
			depleted += quantities[i]
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficientCount++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}

	assert.Equal(t, 1, okCount, "solo una salida puede confirmar")
	assert.Equal(t, 1, insufficientCount, "la otra debe fallar por stock insuficiente")
	assert.Equal(t, 5-depleted, s.quantity("p1"))
	assert.GreaterOrEqual(t, s.quantity("p1"), 0, "el stock nunca queda negativo")
	assert.Equal(t, okCount, s.movementCount())
}

func TestListMovements_MasRecientesPrimero(t *testing.T) {
	s := newMemStore()
	s.addProduct("p1", "Teclado", 100)
	uc := newUseCase(s)

	for _, q := range []int{1, 2, 3} {
		_, err := uc.RecordMovement(context.Background(), inventory.MovementInput{
			ProductID: "p1", Type: entity.MovementTypeOUT, Quantity: q,
		})
		require.NoError(t, err)
	}

	list, err := uc.ListMovements(10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 3, list[0].Quantity, "el último movimiento va primero")
	assert.Equal(t, 1, list[2].Quantity)
	for _, m := range list {
		assert.Equal(t, "Teclado", m.ProductName)
	}
}
