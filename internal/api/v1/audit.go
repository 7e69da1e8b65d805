package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/evemind/evemind/internal/store"
)

type ListAuditInput struct {
	Page  int `query:"page" minimum:"0"`
	Limit int `query:"limit" minimum:"0"`

	filters map[string]any
}

func (i *ListAuditInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.filters = filtersFromQuery(u.Query())
	return nil
}

type AuditStatsOutput struct {
	Body struct {
		Success bool `json:"success"`
		Data    struct {
			Total     int            `json:"total"`
			PorAcao   map[string]int `json:"porAcao"`
			PorTabela map[string]int `json:"porTabela"`
		} `json:"data"`
		Message string `json:"message,omitempty"`
	}
}

// RegisterAuditRoutes wires the read-only audit-trail queries. Entries are
// written exclusively by the store; there is no create/update/delete here.
func RegisterAuditRoutes(api huma.API, st *store.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-auditoria",
		Method:      http.MethodGet,
		Path:        "/auditoria",
		Summary:     "Listar trilha de auditoria",
		Tags:        []string{"Auditoria"},
	}, func(_ context.Context, input *ListAuditInput) (*ListEntityOutput, error) {
		out := &ListEntityOutput{}
		out.Body.Success = true

		if input.Page > 0 || input.Limit > 0 {
			page, err := st.ReadPaginated(store.AuditCollection, input.Page, input.Limit, input.filters)
			if err != nil {
				return nil, storeError(err, "erro ao listar auditoria")
			}
			out.Body.Data = page.Records
			out.Body.Total = page.Pagination.Total
			out.Body.Pagination = &page.Pagination
			return out, nil
		}

		records, err := st.Read(store.AuditCollection, input.filters)
		if err != nil {
			return nil, storeError(err, "erro ao listar auditoria")
		}
		out.Body.Data = records
		out.Body.Total = len(records)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-auditoria",
		Method:      http.MethodGet,
		Path:        "/auditoria/export",
		Summary:     "Exportar trilha de auditoria completa",
		Tags:        []string{"Auditoria"},
	}, func(_ context.Context, _ *struct{}) (*ListEntityOutput, error) {
		records, err := st.Read(store.AuditCollection, nil)
		if err != nil {
			return nil, storeError(err, "erro ao exportar auditoria")
		}
		out := &ListEntityOutput{}
		out.Body.Success = true
		out.Body.Data = records
		out.Body.Total = len(records)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "stats-auditoria",
		Method:      http.MethodGet,
		Path:        "/auditoria/stats",
		Summary:     "Estatísticas da trilha de auditoria",
		Tags:        []string{"Auditoria"},
	}, func(_ context.Context, _ *struct{}) (*AuditStatsOutput, error) {
		records, err := st.Read(store.AuditCollection, nil)
		if err != nil {
			return nil, storeError(err, "erro ao calcular estatísticas")
		}

		out := &AuditStatsOutput{}
		out.Body.Success = true
		out.Body.Data.Total = len(records)
		out.Body.Data.PorAcao = map[string]int{}
		out.Body.Data.PorTabela = map[string]int{}
		for _, rec := range records {
			if acao, ok := rec["acao"].(string); ok {
				out.Body.Data.PorAcao[acao]++
			}
			if tabela, ok := rec["tabela"].(string); ok {
				out.Body.Data.PorTabela[tabela]++
			}
		}
		return out, nil
	})
}
