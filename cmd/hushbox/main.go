package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hushbox/internal/auth"
	"github.com/smallbiznis/hushbox/internal/cache"
	"github.com/smallbiznis/hushbox/internal/clock"
	"github.com/smallbiznis/hushbox/internal/config"
	"github.com/smallbiznis/hushbox/internal/message"
	"github.com/smallbiznis/hushbox/internal/migration"
	"github.com/smallbiznis/hushbox/internal/observability"
	"github.com/smallbiznis/hushbox/internal/ratelimit"
	"github.com/smallbiznis/hushbox/internal/server"
	"github.com/smallbiznis/hushbox/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		ratelimit.Module,

		// Functional Domains
		migration.Module,
		auth.Module,
		message.Module,

		server.Module,
	)
	app.Run()
}

// RegisterSnowflake builds the id generator. NODE_ID must differ per replica.
func RegisterSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("NODE_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}
