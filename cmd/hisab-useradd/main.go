package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"hisab/internal/backend"
	"hisab/internal/cli"
	applog "hisab/internal/log"
	"hisab/internal/services"
	"hisab/internal/storage"
)

func main() {
	email := flag.String("email", "", "email address of the new user (required)")
	name := flag.String("name", "", "display name of the new user")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: hisab-useradd -email someone@example.com [-name \"Full Name\"]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	repo, err := backend.OpenRepository(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer repo.Close()

	user, err := services.NewLedger(repo, services.WithLogger(logger)).CreateUser(ctx, *email, *name)
	if storage.IsDuplicate(err) {
		fmt.Fprintf(os.Stderr, "a user with email %q already exists\n", *email)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Failed to create user", applog.FieldError, err.Error())
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(user)
}
