package main

import (
	"context"
	"log"

	"github.com/locvowork/enrollment_report/internal/bootstrap"
	"github.com/locvowork/enrollment_report/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		log.Fatal(err)
	}

	if err := app.Run(); err != nil {
		logger.ErrorLog(ctx, err, "Server stopped")
		log.Fatal(err)
	}
}
