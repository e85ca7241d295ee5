package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/sidhilynx/internal/server"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
)

// set with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(ctx, cfg, buildVersion)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
