package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/2beens/lumberjacked/internal/config"
	"github.com/2beens/lumberjacked/internal/db"
	"github.com/2beens/lumberjacked/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] up|down|status\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	dsn := db.ConnString(db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("LJ_POSTGRES_PASS"),
		SSLMode:    cfg.PostgresSSLMode,
	})

	ctx := context.Background()
	switch command {
	case "up":
		err = db.Migrate(ctx, dsn)
	case "down":
		err = db.MigrateDown(ctx, dsn)
	case "status":
		err = db.MigrationStatus(ctx, dsn)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("migrate %s: %s", command, err)
	}

	log.Infof("migrate %s done", command)
}
