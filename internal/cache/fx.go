package cache

import (
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("cache",
	fx.Provide(NewProfileCache),
	fx.Provide(func(profiles ProfileCache) authdomain.ProfileInvalidator { return profiles }),
)
