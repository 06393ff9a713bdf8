package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/config"
	"github.com/dmitrijs2005/staffgate/internal/server/provision"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/repomanager"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	nu, err := provision.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	nu.Password, err = provision.PromptPassword(int(os.Stdin.Fd()), os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	logger := logging.NewJSON(os.Stderr, slog.LevelInfo)
	user, err := provision.NewProvisioner(db, rm, logger).CreateUser(ctx, nu)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
}
