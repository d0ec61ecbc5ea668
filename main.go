package main

import (
	"github.com/openshelf/bookshelf/internal/config"
	"github.com/openshelf/bookshelf/internal/entrypoint"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg)
}
