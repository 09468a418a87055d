package main

import (
	"github.com/OFFIS-RIT/migrascope/internal/server"
	"github.com/OFFIS-RIT/migrascope/internal/util"
	"github.com/OFFIS-RIT/migrascope/pkg/logger"
	"github.com/OFFIS-RIT/migrascope/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if util.GetEnvBool("RUN_MIGRATIONS", true) {
		if err := server.RunMigrations(); err != nil {
			logger.Fatal("Failed to run migrations", "err", err)
		}
	}

	server.Init()
}
