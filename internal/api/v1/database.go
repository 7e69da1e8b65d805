package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/evemind/evemind/internal/store"
)

type TablesOutput struct {
	Body struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
		Message string   `json:"message,omitempty"`
	}
}

type StatsOutput struct {
	Body struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
		Message string         `json:"message,omitempty"`
	}
}

type ListTableInput struct {
	Table string `path:"table" doc:"Collection name"`
	Page  int    `query:"page" minimum:"0"`
	Limit int    `query:"limit" minimum:"0"`

	filters map[string]any
}

func (i *ListTableInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.filters = filtersFromQuery(u.Query())
	return nil
}

type CountInput struct {
	Table string `path:"table" doc:"Collection name"`

	filters map[string]any
}

func (i *CountInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.filters = filtersFromQuery(u.Query())
	return nil
}

type CountOutput struct {
	Body struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		Message string `json:"message,omitempty"`
	}
}

type SearchInput struct {
	Table string `path:"table" doc:"Collection name"`
	Field string `path:"field" doc:"Field to match"`
	Value string `path:"value" doc:"Value to match (substring, case-insensitive)"`
}

type TableRecordInput struct {
	Table string `path:"table" doc:"Collection name"`
	ID    int    `path:"id" doc:"Record id"`
}

type CreateTableRecordInput struct {
	Table string         `path:"table" doc:"Collection name"`
	Body  map[string]any `doc:"Record fields (free-form)"`
}

type UpdateTableRecordInput struct {
	Table string         `path:"table" doc:"Collection name"`
	ID    int            `path:"id" doc:"Record id"`
	Body  map[string]any `doc:"Fields to merge into the record"`
}

type BackupOutput struct {
	Body struct {
		Success bool `json:"success"`
		Data    struct {
			BackupFile string `json:"backupFile"`
		} `json:"data"`
		Message string `json:"message,omitempty"`
	}
}

type ClearOutput struct {
	Body struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}
}

// RegisterDatabaseRoutes wires the generic table-level admin surface: every
// collection reachable by name, plus tables/stats/backup/clear. The server
// mounts this group behind the admin role.
func RegisterDatabaseRoutes(api huma.API, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "database-tables",
		Method:      http.MethodGet,
		Path:        "/database/tables",
		Summary:     "Listar tabelas disponíveis",
		Tags:        []string{"Database"},
	}, func(_ context.Context, _ *struct{}) (*TablesOutput, error) {
		out := &TablesOutput{}
		out.Body.Success = true
		out.Body.Data = st.Tables()
		out.Body.Message = "tabelas disponíveis no sistema"
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "database-stats",
		Method:      http.MethodGet,
		Path:        "/database/stats",
		Summary:     "Estatísticas do sistema",
		Tags:        []string{"Database"},
	}, func(_ context.Context, _ *struct{}) (*StatsOutput, error) {
		out := &StatsOutput{}
		out.Body.Success = true
		out.Body.Data = st.Stats()
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "database-backup",
		Method:      http.MethodPost,
		Path:        "/database/backup",
		Summary:     "Criar backup dos dados",
		Tags:        []string{"Database"},
	}, func(_ context.Context, _ *struct{}) (*BackupOutput, error) {
		path, err := st.Backup()
		if err != nil {
			return nil, storeError(err, "erro ao criar backup")
		}
		out := &BackupOutput{}
		out.Body.Success = true
		out.Body.Data.BackupFile = path
		out.Body.Message = "backup criado com sucesso"
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "database-clear",
		Method:      http.MethodPost,
		Path:        "/database/clear",
		Summary:     "Limpar todos os dados",
		Tags:        []string{"Database"},
	}, func(ctx context.Context, _ *struct{}) (*ClearOutput, error) {
		if err := st.ClearAll(ctx); err != nil {
			return nil, storeError(err, "erro ao limpar dados")
		}
		out := &ClearOutput{}
		out.Body.Success = true
		out.Body.Message = "todos os dados foram limpos"
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "database-list",
		Method:      http.MethodGet,
		Path:        "/database/{table}",
		Summary:     "Listar registros de uma tabela",
		Tags:        []string{"Database"},
	}, func(_ context.Context, input *ListTableInput) (*ListEntityOutput, error) {
		out := &ListEntityOutput{}
		out.Body.Success = true

		if input.Page > 0 || input.Limit > 0 {
			page, err := st.ReadPaginated(input.Table, input.Page, input.Limit, input.filters)
			if err != nil {
				return nil, storeError(err, "erro ao listar registros")
			}
			out.Body.Data = page.Records
			out.Body.Total = page.Pagination.Total
			out.Body.Pagination = &page.Pagination
			return out, nil
		}

		records, err := st.Read(input.Table, input.filters)
		if err != nil {
			return nil, storeError(err, "erro ao listar registros")
		}
		out.Body.Data = records
		out.Body.Total = len(records)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "database-count",
		Method:      http.MethodGet,
		Path:        "/database/{table}/count",
		Summary:     "Contar registros de uma tabela",
		Tags:        []string{"Database"},
	}, func(_ context.Context, input *CountInput) (*CountOutput, error) {
		n, err := st.Count(input.Table, input.filters)
		if err != nil {
			return nil, storeError(err, "erro ao contar registros")
		}
		out := &CountOutput{}
		out.Body.Success = true
		out.Body.Count = n
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "database-search",
		Method:      http.MethodGet,
		Path:        "/database/{table}/search/{field}/{value}",
		Summary:     "Buscar por campo específico",
		Tags:        []string{"Database"},
	}, func(_ context.Context, input *SearchInput) (*ListEntityOutput, error) {
		records, err := st.FindByField(input.Table, input.Field, input.Value)
		if err != nil {
			return nil, storeError(err, "erro ao buscar registros")
		}
		out := &ListEntityOutput{}
		out.Body.Success = true
		out.Body.Data = records
		out.Body.Total = len(records)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "database-get",
		Method:      http.MethodGet,
		Path:        "/database/{table}/{id}",
		Summary:     "Buscar registro por id",
		Tags:        []string{"Database"},
	}, func(_ context.Context, input *TableRecordInput) (*RecordOutput, error) {
		rec, err := st.ReadByID(input.Table, input.ID)
		if err != nil {
			return nil, storeError(err, "erro ao buscar registro")
		}
		out := &RecordOutput{}
		out.Body.Success = true
		out.Body.Data = rec
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "database-create",
		Method:        http.MethodPost,
		Path:          "/database/{table}",
		Summary:       "Criar registro em uma tabela",
		Tags:          []string{"Database"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTableRecordInput) (*RecordOutput, error) {
		if len(input.Body) == 0 {
			return nil, huma.Error400BadRequest("dados do registro são obrigatórios")
		}
		rec, err := st.Create(ctx, input.Table, store.Record(input.Body))
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
		OperationID: "database-update",
		Method:      http.MethodPut,
		Path:        "/database/{table}/{id}",
		Summary:     "Atualizar registro de uma tabela",
		Tags:        []string{"Database"},
	}, func(ctx context.Context, input *UpdateTableRecordInput) (*RecordOutput, error) {
		if len(input.Body) == 0 {
			return nil, huma.Error400BadRequest("dados para atualização são obrigatórios")
		}
		rec, err := st.Update(ctx, input.Table, input.ID, store.Record(input.Body))
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
		OperationID: "database-delete",
		Method:      http.MethodDelete,
		Path:        "/database/{table}/{id}",
		Summary:     "Excluir registro de uma tabela",
		Tags:        []string{"Database"},
	}, func(ctx context.Context, input *TableRecordInput) (*RecordOutput, error) {
		rec, err := st.Delete(ctx, input.Table, input.ID)
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
