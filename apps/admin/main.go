package main

import (
	"fmt"
	"os"

	"github.com/trezcool/madrasa/apps/shared"
	"github.com/trezcool/madrasa/core"
	logsvc "github.com/trezcool/madrasa/services/logger"
	"github.com/trezcool/madrasa/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(os.Stdout, "ADMIN", conf)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	svcs := shared.NewServices(shared.SQLRepositories(db))
	validate, _ := shared.NewValidator()

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrSvc:   svcs.User,
		natSvc:   svcs.Nationality,
		validate: validate,
	}
	if err = cli.run(os.Args[1:]); err != nil {
		_ = db.Close()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
