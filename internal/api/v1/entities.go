package v1

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/evemind/evemind/internal/store"
)

// Entity describes one collection exposed as a CRUD group. Required fields
// are enforced on create; unique fields reject a create whose value is
// already taken (both checks live here, not in the store, which is
// schemaless by design).
type Entity struct {
	Collection string
	Title      string
	Required   []string
	Unique     []string

	// Prepare, when set, adjusts the payload before it reaches the store
	// (e.g. hashing the senha field of usuarios).
	Prepare func(body map[string]any) error
}

// Entities lists every entity collection served at /api/{collection}. The
// audit collection has its own read-only route group.
var Entities = []Entity{
	{Collection: "moradores", Title: "Moradores", Required: []string{"nome", "apartamento", "email", "telefone"}, Unique: []string{"apartamento"}},
	{Collection: "avisos", Title: "Avisos", Required: []string{"titulo", "conteudo"}},
	{Collection: "reservas", Title: "Reservas", Required: []string{"moradorId", "espaco", "dataReserva"}},
	{Collection: "ocorrencias", Title: "Ocorrências", Required: []string{"tipo", "descricao"}},
	{Collection: "usuarios", Title: "Usuários", Required: []string{"nome", "email", "senha"}, Unique: []string{"email"}, Prepare: hashSenha},
	{Collection: "empresas", Title: "Empresas", Required: []string{"nome", "cnpj"}, Unique: []string{"cnpj"}},
	{Collection: "permissoes", Title: "Permissões", Required: []string{"nome", "codigo"}, Unique: []string{"codigo"}},
	{Collection: "visitantes", Title: "Visitantes", Required: []string{"nome", "documento"}},
	{Collection: "reunioes", Title: "Reuniões", Required: []string{"titulo", "data"}},
	{Collection: "agendamentos", Title: "Agendamentos", Required: []string{"titulo", "data"}},
	{Collection: "atas", Title: "Atas", Required: []string{"titulo", "conteudo"}},
	{Collection: "eventos", Title: "Eventos", Required: []string{"titulo", "data"}},
	{Collection: "patrimonio", Title: "Patrimônio", Required: []string{"nome"}},
	{Collection: "prestadores", Title: "Prestadores", Required: []string{"nome", "servico"}},
	{Collection: "funcionarios", Title: "Funcionários", Required: []string{"nome", "cargo"}},
	{Collection: "funcoes", Title: "Funções", Required: []string{"nome"}},
	{Collection: "grupos", Title: "Grupos", Required: []string{"nome"}},
	{Collection: "unidades", Title: "Unidades", Required: []string{"numero"}, Unique: []string{"numero"}},
	{Collection: "documentos", Title: "Documentos", Required: []string{"titulo"}},
	{Collection: "quadro-avisos", Title: "Quadro de Avisos", Required: []string{"titulo"}},
	{Collection: "orcamento-compras", Title: "Orçamento de Compras", Required: []string{"descricao", "valor"}},
	{Collection: "orcamento-servicos", Title: "Orçamento de Serviços", Required: []string{"descricao", "valor"}},
}

type ListEntityInput struct {
	Page  int `query:"page" minimum:"0" doc:"1-based page number; enables pagination together with limit"`
	Limit int `query:"limit" minimum:"0" doc:"Page size"`

	filters map[string]any
}

// Resolve captures the remaining query-string pairs as record filters.
func (i *ListEntityInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.filters = filtersFromQuery(u.Query())
	return nil
}

type ListEntityOutput struct {
	Body struct {
		Success    bool              `json:"success"`
		Data       []store.Record    `json:"data"`
		Total      int               `json:"total"`
		Pagination *store.Pagination `json:"pagination,omitempty"`
		Message    string            `json:"message,omitempty"`
	}
}

type GetEntityInput struct {
	ID int `path:"id" doc:"Record id"`
}

type RecordOutput struct {
	Body struct {
		Success bool         `json:"success"`
		Data    store.Record `json:"data"`
		Message string       `json:"message,omitempty"`
	}
}

type CreateEntityInput struct {
	Body map[string]any `doc:"Record fields (free-form)"`
}

type UpdateEntityInput struct {
	ID   int            `path:"id" doc:"Record id"`
	Body map[string]any `doc:"Fields to merge into the record"`
}

// RegisterEntityRoutes wires the five CRUD operations for every entity
// collection, all backed by the one injected store.
func RegisterEntityRoutes(api huma.API, st *store.Store) {
	for _, ent := range Entities {
		registerEntity(api, st, ent)
	}
}

func registerEntity(api huma.API, st *store.Store, ent Entity) {
	basePath := "/" + ent.Collection
	tag := ent.Title

	huma.Register(api, huma.Operation{
		OperationID: "list-" + ent.Collection,
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "Listar " + strings.ToLower(ent.Title),
		Tags:        []string{tag},
	}, func(_ context.Context, input *ListEntityInput) (*ListEntityOutput, error) {
		out := &ListEntityOutput{}
		out.Body.Success = true

		if input.Page > 0 || input.Limit > 0 {
			page, err := st.ReadPaginated(ent.Collection, input.Page, input.Limit, input.filters)
			if err != nil {
				return nil, storeError(err, "erro ao listar registros")
			}
			out.Body.Data = page.Records
			out.Body.Total = page.Pagination.Total
			out.Body.Pagination = &page.Pagination
			return out, nil
		}

		records, err := st.Read(ent.Collection, input.filters)
		if err != nil {
			return nil, storeError(err, "erro ao listar registros")
		}
		out.Body.Data = records
		out.Body.Total = len(records)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-" + ent.Collection,
		Method:      http.MethodGet,
		Path:        basePath + "/{id}",
		Summary:     "Buscar por id",
		Tags:        []string{tag},
	}, func(_ context.Context, input *GetEntityInput) (*RecordOutput, error) {
		rec, err := st.ReadByID(ent.Collection, input.ID)
		if err != nil {
			return nil, storeError(err, "erro ao buscar registro")
		}
		out := &RecordOutput{}
		out.Body.Success = true
		out.Body.Data = rec
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-" + ent.Collection,
		Method:        http.MethodPost,
		Path:          basePath,
		Summary:       "Criar registro",
		Tags:          []string{tag},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateEntityInput) (*RecordOutput, error) {
		if err := validateRequired(ent, input.Body); err != nil {
			return nil, err
		}
		if err := validateUnique(st, ent, input.Body); err != nil {
			return nil, err
		}
		if ent.Prepare != nil {
			if err := ent.Prepare(input.Body); err != nil {
				return nil, huma.Error500InternalServerError("erro ao preparar registro", err)
			}
		}

		rec, err := st.Create(ctx, ent.Collection, store.Record(input.Body))
		if err != nil {
			return nil, storeError(err, "erro ao criar registro")
		}

		out := &RecordOutput{}
		out.Body.Success = true
		out.Body.Data = rec
		out.Body.Message = "registro criado com sucesso"
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-" + ent.Collection,
		Method:      http.MethodPut,
		Path:        basePath + "/{id}",
		Summary:     "Atualizar registro",
		Tags:        []string{tag},
	}, func(ctx context.Context, input *UpdateEntityInput) (*RecordOutput, error) {
		if len(input.Body) == 0 {
			return nil, huma.Error400BadRequest("dados para atualização são obrigatórios")
		}
		if ent.Prepare != nil {
			if err := ent.Prepare(input.Body); err != nil {
				return nil, huma.Error500InternalServerError("erro ao preparar registro", err)
			}
		}

		rec, err := st.Update(ctx, ent.Collection, input.ID, store.Record(input.Body))
		if err != nil {
			return nil, storeError(err, "erro ao atualizar registro")
		}

		out := &RecordOutput{}
		out.Body.Success = true
		out.Body.Data = rec
		out.Body.Message = "registro atualizado com sucesso"
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-" + ent.Collection,
		Method:      http.MethodDelete,
		Path:        basePath + "/{id}",
		Summary:     "Excluir registro",
		Tags:        []string{tag},
	}, func(ctx context.Context, input *GetEntityInput) (*RecordOutput, error) {
		rec, err := st.Delete(ctx, ent.Collection, input.ID)
		if err != nil {
			return nil, storeError(err, "erro ao excluir registro")
		}

		out := &RecordOutput{}
		out.Body.Success = true
		out.Body.Data = rec
		out.Body.Message = "registro excluído com sucesso"
		return out, nil
	})
}

// hashSenha bcrypt-hashes the senha field so login can verify it later.
// Values already in bcrypt form (seed data, imports) pass through untouched.
func hashSenha(body map[string]any) error {
	senha, ok := body["senha"].(string)
	if !ok || senha == "" || strings.HasPrefix(senha, "$2") {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	body["senha"] = string(hash)
	return nil
}

func validateRequired(ent Entity, body map[string]any) error {
	missing := make([]string, 0)
	for _, field := range ent.Required {
		v, ok := body[field]
		if !ok || v == nil || v == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return huma.Error400BadRequest(fmt.Sprintf("campos obrigatórios ausentes: %s", strings.Join(missing, ", ")))
	}
	return nil
}

func validateUnique(st *store.Store, ent Entity, body map[string]any) error {
	for _, field := range ent.Unique {
		want, ok := body[field]
		if !ok {
			continue
		}
		existing, err := st.Read(ent.Collection, nil)
		if err != nil {
			return storeError(err, "erro ao validar registro")
		}
		for _, rec := range existing {
			if rec[field] == want {
				return huma.Error400BadRequest(fmt.Sprintf("já existe um registro com %s = %v", field, want))
			}
		}
	}
	return nil
}
