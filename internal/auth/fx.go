package auth

import (
	"github.com/smallbiznis/hushbox/internal/auth/oauth"
	"github.com/smallbiznis/hushbox/internal/auth/password"
	"github.com/smallbiznis/hushbox/internal/auth/repository"
	"github.com/smallbiznis/hushbox/internal/auth/service"
	"github.com/smallbiznis/hushbox/internal/auth/session"
	"github.com/smallbiznis/hushbox/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(password.New),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
	token.Module,
	oauth.Module,
)
