package main

import (
	"github.com/bioastra/spacekg/internal/server"
	"github.com/bioastra/spacekg/internal/util"
	"github.com/bioastra/spacekg/pkg/logger"
	"github.com/bioastra/spacekg/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
