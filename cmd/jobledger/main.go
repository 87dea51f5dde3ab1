package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/jobledger/jobledger/internal/clock"
	"github.com/jobledger/jobledger/internal/config"
	"github.com/jobledger/jobledger/internal/docnumber"
	"github.com/jobledger/jobledger/internal/invoice"
	"github.com/jobledger/jobledger/internal/logger"
	"github.com/jobledger/jobledger/internal/migration"
	"github.com/jobledger/jobledger/internal/organization"
	"github.com/jobledger/jobledger/internal/quotation"
	"github.com/jobledger/jobledger/internal/server"
	"github.com/jobledger/jobledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		docnumber.Module,
		migration.Module,

		// Functional domains
		organization.Module,
		quotation.Module,
		invoice.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
