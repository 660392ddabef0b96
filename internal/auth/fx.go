package auth

import (
	"github.com/smallbiznis/tessera/internal/auth/repository"
	"github.com/smallbiznis/tessera/internal/auth/service"
	"github.com/smallbiznis/tessera/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	session.Module,
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
