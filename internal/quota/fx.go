package quota

import (
	"github.com/smallbiznis/tessera/internal/quota/repository"
	"github.com/smallbiznis/tessera/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
