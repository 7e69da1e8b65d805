// Package v1 implements the REST surface: authentication, one CRUD group per
// entity collection, the generic /database admin routes and the audit-trail
// queries. Handlers translate HTTP input into record-store calls and map the
// store's error taxonomy onto status codes.
package v1

import (
	"errors"
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/evemind/evemind/internal/store"
)

// reservedParams are query keys consumed by the handlers themselves and
// never treated as record filters.
var reservedParams = map[string]bool{
	"page":  true,
	"limit": true,
}

// filtersFromQuery turns the remaining query-string pairs into store filters.
// Values stay strings, so matching is case-insensitive substring containment
// (the store's textual filter semantics). Repeated keys keep the first value.
func filtersFromQuery(q url.Values) map[string]any {
	filters := make(map[string]any, len(q))
	for key, vals := range q {
		if reservedParams[key] || len(vals) == 0 {
			continue
		}
		filters[key] = vals[0]
	}
	return filters
}

// storeError maps a store failure onto the API error envelope.
func storeError(err error, fallback string) huma.StatusError {
	switch {
	case errors.Is(err, store.ErrUnknownCollection):
		return huma.Error400BadRequest("tabela não existe", err)
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound("registro não encontrado", err)
	case errors.Is(err, store.ErrPersistence):
		return huma.Error500InternalServerError("falha ao persistir dados", err)
	default:
		return huma.Error500InternalServerError(fallback, err)
	}
}
