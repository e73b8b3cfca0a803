package controllers

import (
	"net/http"

	"github.com/GooseXRL8/flowerlove/internal/runtime"
	accountsvc "github.com/GooseXRL8/flowerlove/internal/services/accounts"
	memorysvc "github.com/GooseXRL8/flowerlove/internal/services/memories"
	profilesvc "github.com/GooseXRL8/flowerlove/internal/services/profiles"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// Services bundles the business services the controllers delegate to.
type Services struct {
	Accounts *accountsvc.Service
	Profiles *profilesvc.Service
	Memories *memorysvc.Service
}

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general  *GeneralController
	accounts *AccountsController
	profiles *ProfilesController
	memories *MemoriesController
}

// NewControllerRegistry creates a new controller registry.
//
// All authenticated controllers share one Authenticator backed by the
// accounts service.
func NewControllerRegistry(rt *runtime.Runtime, svcs Services, logger logpkg.Logger) *ControllerRegistry {
	auth := NewAuthenticator(svcs.Accounts, logger)
	return &ControllerRegistry{
		general:  NewGeneralController(rt),
		accounts: NewAccountsController(svcs.Accounts, auth, logger),
		profiles: NewProfilesController(rt, svcs.Profiles, auth, logger),
		memories: NewMemoriesController(svcs.Memories, auth, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.accounts.RegisterRoutes(mux)
	r.profiles.RegisterRoutes(mux)
	r.memories.RegisterRoutes(mux)
}
