package main

import (
	"log"
	"os"

	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
	emailsvc "github.com/progressiveschool/progressive/services/email"
	"github.com/progressiveschool/progressive/storage/database"
	"github.com/progressiveschool/progressive/storage/database/gormrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	db, err := database.Open(conf)
	errAndDie(err)

	usrRepo := gormrepos.NewUserRepository(db)
	cli := commandLine{
		db:        db,
		usrRepo:   usrRepo,
		usrSvc:    user.NewService(conf, usrRepo, emailsvc.NewConsoleService(conf)),
		schoolSvc: school.NewService(gormrepos.NewSchoolRepository(db)),
		out:       os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
