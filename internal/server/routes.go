package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/evemind/evemind/internal/api/v1"
	"github.com/evemind/evemind/internal/api/ws"
	"github.com/evemind/evemind/internal/auth"
	"github.com/evemind/evemind/internal/store"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, st *store.Store) {
	v1.RegisterEntityRoutes(api, st)
	v1.RegisterAuditRoutes(api, st)
}

func registerDatabaseRoutes(api huma.API, st *store.Store) {
	v1.RegisterDatabaseRoutes(api, st)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/tables", hub.ServeAll)
	r.Get("/tables/{table}", hub.ServeTable)
}
