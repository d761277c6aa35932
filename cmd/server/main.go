package main

import (
	"github.com/uet-rag/prospectus/internal/server"
	"github.com/uet-rag/prospectus/internal/util"
	"github.com/uet-rag/prospectus/pkg/logger"
	"github.com/uet-rag/prospectus/pkg/logger/console"

	_ "github.com/lib/pq"
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
