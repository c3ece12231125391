package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
)

const testProductID = "11111111-1111-1111-1111-111111111111"

// movementTestEnv almacén mínimo en memoria para ejercitar el handler
// con el caso de uso real por debajo.
type movementTestEnv struct {
	product   *entity.Product
	movements []*entity.StockMovement
}

type envProductRepo struct{ env *movementTestEnv }

func (r *envProductRepo) Create(p *entity.Product) error { r.env.product = p; return nil }

func (r *envProductRepo) GetByID(id string) (*entity.Product, error) {
	if r.env.product == nil || r.env.product.ID != id {
		return nil, nil
	}
	cp := *r.env.product
	return &cp, nil
}

func (r *envProductRepo) GetForUpdate(id string) (*entity.Product, error) { return r.GetByID(id) }

func (r *envProductRepo) Update(p *entity.Product) error { r.env.product = p; return nil }

func (r *envProductRepo) UpdateQuantity(productID string, quantity int) error {
	if r.env.product == nil || r.env.product.ID != productID {
		return domain.ErrNotFound
	}
	r.env.product.Quantity = quantity
	return nil
}

func (r *envProductRepo) List(repository.ProductFilter) ([]*entity.Product, int, error) {
	return nil, 0, nil
}

func (r *envProductRepo) Delete(string) error { return nil }

type envMovementRepo struct{ env *movementTestEnv }

func (r *envMovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.env.movements = append(r.env.movements, &cp)
	return nil
}

func (r *envMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.env.movements {
		if m.ID == id {
			cp := *m
			if r.env.product != nil && r.env.product.ID == m.ProductID {
				cp.ProductName = r.env.product.Name
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *envMovementRepo) List(limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.env.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if offset > 0 {
			offset--
			continue
		}
		cp := *r.env.movements[i]
		if r.env.product != nil && r.env.product.ID == cp.ProductID {
			cp.ProductName = r.env.product.Name
		}
		out = append(out, &cp)
	}
	return out, nil
}

type envTxRunner struct{ env *movementTestEnv }

func (r *envTxRunner) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(&envMovementRepo{env: r.env}, &envProductRepo{env: r.env})
}

// buildMovementApp monta el handler de movimientos (sin auth: el middleware
// tiene sus propios tests) sobre un entorno con un producto precargado.
func buildMovementApp(initialQuantity int) (*fiber.App, *movementTestEnv) {
	env := &movementTestEnv{product: &entity.Product{
		ID: testProductID, Name: "Teclado", Quantity: initialQuantity,
	}}
	uc := inventory.NewRegisterMovementUseCase(&envTxRunner{env: env}, &envMovementRepo{env: env})
	handler := apphttp.NewStockMovementHandler(uc)

	app := fiber.New()
	app.Post("/api/stock-movements", handler.Create)
	app.Get("/api/stock-movements", handler.List)
	return app, env
}

func postMovement(t *testing.T, app *fiber.App, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/stock-movements", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestStockMovementCreate_IN_Retorna201(t *testing.T) {
	app, env := buildMovementApp(10)

	resp := postMovement(t, app, dto.RegisterMovementRequest{
		ProductID: testProductID, Type: "IN", Quantity: 5, Notes: "reposición",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var out dto.MovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, testProductID, out.ProductID)
	assert.Equal(t, "Teclado", out.ProductName, "la respuesta incluye el nombre del producto")
	assert.Equal(t, "IN", out.Type)
	assert.Equal(t, 5, out.Quantity)
	assert.Equal(t, "reposición", out.Notes)

	assert.Equal(t, 15, env.product.Quantity)
}

func TestStockMovementCreate_StockInsuficiente_Retorna400(t *testing.T) {
	app, env := buildMovementApp(7)

	resp := postMovement(t, app, dto.RegisterMovementRequest{
		ProductID: testProductID, Type: "OUT", Quantity: 8,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Code)

	assert.Equal(t, 7, env.product.Quantity, "la cantidad no debe cambiar")
	assert.Empty(t, env.movements, "no debe registrarse ningún movimiento")
}

func TestStockMovementCreate_ProductoInexistente_Retorna404(t *testing.T) {
	app, _ := buildMovementApp(10)

	resp := postMovement(t, app, dto.RegisterMovementRequest{
		ProductID: "22222222-2222-2222-2222-222222222222", Type: "OUT", Quantity: 1,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "PRODUCT_NOT_FOUND", out.Code)
}

func TestStockMovementCreate_Validacion_Retorna400(t *testing.T) {
	cases := []struct {
		name string
		body map[string]any
	}{
		{"tipo inválido", map[string]any{"product_id": testProductID, "type": "TRANSFER", "quantity": 1}},
		{"cantidad cero", map[string]any{"product_id": testProductID, "type": "IN", "quantity": 0}},
		{"cantidad negativa", map[string]any{"product_id": testProductID, "type": "OUT", "quantity": -2}},
		{"sin producto", map[string]any{"type": "IN", "quantity": 1}},
		{"producto no uuid", map[string]any{"product_id": "abc", "type": "IN", "quantity": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, env := buildMovementApp(10)

			resp := postMovement(t, app, tc.body)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, 10, env.product.Quantity, "la validación rechaza antes de escribir")
			assert.Empty(t, env.movements)
		})
	}
}

func TestStockMovementList_MasRecientesPrimero(t *testing.T) {
	app, _ := buildMovementApp(100)

	for _, q := range []int{1, 2, 3} {
		resp := postMovement(t, app, dto.RegisterMovementRequest{
			ProductID: testProductID, Type: "IN", Quantity: q,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stock-movements?page=1&limit=10", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.MovementListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data, 3)
	assert.Equal(t, 3, out.Data[0].Quantity, "el último movimiento va primero")
	assert.Equal(t, 1, out.Data[2].Quantity)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 10, out.Limit)
}
