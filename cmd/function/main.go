package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wonny/valuescreen/internal/api/handlers"
	"github.com/wonny/valuescreen/internal/function"
	"github.com/wonny/valuescreen/internal/screener"
	"github.com/wonny/valuescreen/pkg/config"
	"github.com/wonny/valuescreen/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	s, closeFn := screener.Build(cfg, log)
	defer closeFn()

	mode := function.ParseMode(cfg.FunctionMode)
	h := function.NewHandler(handlers.NewScreenHandler(s, cfg.Finviz.ScreenerURL, log), mode)

	log.WithField("mode", string(mode)).Info("Function handler starting")
	lambda.Start(h.Handle)
}
