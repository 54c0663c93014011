package oauth

import (
	authconfig "github.com/smallbiznis/hushbox/internal/auth/config"
	"github.com/smallbiznis/hushbox/internal/auth/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.oauth",
	fx.Provide(authconfig.LoadGoogleConfig),
	fx.Provide(func(svc domain.Service) SessionStarter { return svc }),
	fx.Provide(NewService),
)
