package v1_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/evemind/evemind/internal/api/v1"
	"github.com/evemind/evemind/internal/store"
)

type listBody struct {
	Success    bool              `json:"success"`
	Data       []store.Record    `json:"data"`
	Total      int               `json:"total"`
	Pagination *store.Pagination `json:"pagination"`
}

type recordBody struct {
	Success bool         `json:"success"`
	Data    store.Record `json:"data"`
	Message string       `json:"message"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// GET /{collection}
// ---------------------------------------------------------------------------

func TestListEntities(t *testing.T) {
	t.Parallel()

	t.Run("seeded_collection", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Get("/moradores")
		require.Equal(t, http.StatusOK, resp.Code)

		var body listBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "João Silva", body.Data[0]["nome"])
		assert.Equal(t, 1, body.Total)
		assert.Nil(t, body.Pagination, "no pagination unless requested")
	})

	t.Run("query_params_filter", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Post("/visitantes", map[string]any{"nome": "Maria Souza", "documento": "123"})
		require.Equal(t, http.StatusCreated, resp.Code)

		resp = api.Get("/visitantes?nome=mar")
		require.Equal(t, http.StatusOK, resp.Code)

		var body listBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "Maria Souza", body.Data[0]["nome"])

		resp = api.Get("/visitantes?nome=zzz")
		require.Equal(t, http.StatusOK, resp.Code)
		body = listBody{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Empty(t, body.Data)
	})

	t.Run("paginated", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		for i := 0; i < 5; i++ {
			resp := api.Post("/visitantes", map[string]any{"nome": "v", "documento": "d"})
			require.Equal(t, http.StatusCreated, resp.Code)
		}

		resp := api.Get("/visitantes?page=2&limit=2")
		require.Equal(t, http.StatusOK, resp.Code)

		var body listBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.Pagination)
		assert.Equal(t, 2, body.Pagination.Page)
		assert.Equal(t, 5, body.Pagination.Total)
		assert.Equal(t, 3, body.Pagination.TotalPages)
		assert.True(t, body.Pagination.HasNext)
		assert.True(t, body.Pagination.HasPrev)
		require.Len(t, body.Data, 2)
		assert.Equal(t, 3, body.Data[0].ID())
	})
}

// ---------------------------------------------------------------------------
// GET /{collection}/{id}
// ---------------------------------------------------------------------------

func TestGetEntity(t *testing.T) {
	t.Parallel()

	api, st := newTestAPI(t)
	v1.RegisterEntityRoutes(api, st)

	resp := api.Get("/moradores/1")
	require.Equal(t, http.StatusOK, resp.Code)

	var body recordBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "João Silva", body.Data["nome"])

	resp = api.Get("/moradores/42")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var errBody errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	assert.False(t, errBody.Success)
	assert.Equal(t, "registro não encontrado", errBody.Message)
}

// ---------------------------------------------------------------------------
// POST /{collection}
// ---------------------------------------------------------------------------

func TestCreateEntity(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Post("/moradores", map[string]any{
			"nome":        "Ana Lima",
			"apartamento": "302",
			"email":       "ana@email.com",
			"telefone":    "(11) 98888-8888",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var body recordBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, 2, body.Data.ID())
		assert.Equal(t, "Ana Lima", body.Data["nome"])
		assert.NotEmpty(t, body.Data["createdAt"])
		assert.Equal(t, "registro criado com sucesso", body.Message)
	})

	t.Run("missing_required_fields", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Post("/moradores", map[string]any{"nome": "Ana"})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		var errBody errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
		assert.Contains(t, errBody.Message, "campos obrigatórios ausentes")
		assert.Contains(t, errBody.Message, "apartamento")
		assert.Contains(t, errBody.Message, "email")
		assert.Contains(t, errBody.Message, "telefone")
	})

	t.Run("unique_field_taken", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		// The seed morador already occupies apartamento 101.
		resp := api.Post("/moradores", map[string]any{
			"nome":        "Ana Lima",
			"apartamento": "101",
			"email":       "ana@email.com",
			"telefone":    "(11) 98888-8888",
		})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		var errBody errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
		assert.Contains(t, errBody.Message, "apartamento")
	})

	t.Run("usuarios_senha_is_hashed", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Post("/usuarios", map[string]any{
			"nome":  "Maria",
			"email": "maria@email.com",
			"senha": "plaintext",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var body recordBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		senha, _ := body.Data["senha"].(string)
		assert.True(t, strings.HasPrefix(senha, "$2"), "senha must be stored as bcrypt hash")
		assert.NotEqual(t, "plaintext", senha)
	})
}

// ---------------------------------------------------------------------------
// PUT /{collection}/{id}
// ---------------------------------------------------------------------------

func TestUpdateEntity(t *testing.T) {
	t.Parallel()

	t.Run("merges_fields", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Put("/moradores/1", map[string]any{"telefone": "(11) 90000-0000"})
		require.Equal(t, http.StatusOK, resp.Code)

		var body recordBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "(11) 90000-0000", body.Data["telefone"])
		assert.Equal(t, "João Silva", body.Data["nome"], "unspecified fields survive")
	})

	t.Run("empty_body", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Put("/moradores/1", map[string]any{})
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		t.Parallel()

		api, st := newTestAPI(t)
		v1.RegisterEntityRoutes(api, st)

		resp := api.Put("/moradores/42", map[string]any{"nome": "x"})
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// DELETE /{collection}/{id}
// ---------------------------------------------------------------------------

func TestDeleteEntity(t *testing.T) {
	t.Parallel()

	api, st := newTestAPI(t)
	v1.RegisterEntityRoutes(api, st)

	resp := api.Delete("/moradores/1")
	require.Equal(t, http.StatusOK, resp.Code)

	var body recordBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Data.ID())

	resp = api.Get("/moradores/1")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Delete("/moradores/1")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

// ---------------------------------------------------------------------------
// Mutations through the API land in the audit trail
// ---------------------------------------------------------------------------

func TestEntityMutationsAreAudited(t *testing.T) {
	t.Parallel()

	api, st := newTestAPI(t)
	v1.RegisterEntityRoutes(api, st)

	resp := api.Post("/visitantes", map[string]any{"nome": "Maria", "documento": "123"})
	require.Equal(t, http.StatusCreated, resp.Code)

	entries, err := st.Read(store.AuditCollection, map[string]any{"tabela": "visitantes"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.ActionCreate, entries[0]["acao"])
}
