package message

import (
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/message/domain"
	"github.com/smallbiznis/hushbox/internal/message/repository"
	"github.com/smallbiznis/hushbox/internal/message/service"
	"go.uber.org/fx"
)

var Module = fx.Module("message.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(users authdomain.Repository) domain.RecipientDirectory { return users }),
	fx.Provide(func(svc domain.Service) authdomain.MessagePurger { return svc }),
)
