package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"shipment-console/internal/config"
	"shipment-console/internal/repository"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cmd := pflag.String("cmd", "up", "goose command: up|down|status|version|redo|reset")
	pflag.Parse()

	db := config.DefaultDB()
	if err := envconfig.Process("", &db); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := repository.Migrate(ctx, db.DSN(), *cmd, pflag.Args()...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("migrate %s: done", *cmd)
}
