package main

import (
	"context"
	"log"

	"github.com/knetproto/kindex/internal/config"
	"github.com/knetproto/kindex/internal/indexer"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := indexer.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
