package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	echoapi "github.com/progressiveschool/progressive/apps/api/echo"
	"github.com/progressiveschool/progressive/core"
	"github.com/progressiveschool/progressive/core/bulletin"
	"github.com/progressiveschool/progressive/core/result"
	"github.com/progressiveschool/progressive/core/school"
	"github.com/progressiveschool/progressive/core/user"
	emailsvc "github.com/progressiveschool/progressive/services/email"
	exportsvc "github.com/progressiveschool/progressive/services/export"
	logsvc "github.com/progressiveschool/progressive/services/logger"
	"github.com/progressiveschool/progressive/storage/database"
	"github.com/progressiveschool/progressive/storage/database/gormrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err = database.StatusCheck(ctx, db); err != nil {
			cancel()
			logger.Fatal(fmt.Sprintf("database not ready: %v", err), err)
		}
		cancel()
	}
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(conf, gormrepos.NewUserRepository(db), mailSvc)
	schoolSvc := school.NewService(gormrepos.NewSchoolRepository(db))
	resultSvc := result.NewService(gormrepos.NewMarkRepository(db), schoolSvc, usrSvc)
	bulletinSvc := bulletin.NewService(gormrepos.NewBulletinRepository(db))

	validate, translator := core.NewValidator()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : env %q", conf.Env))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		UserSvc:     usrSvc,
		SchoolSvc:   schoolSvc,
		ResultSvc:   resultSvc,
		BulletinSvc: bulletinSvc,
		PDFSvc:      exportsvc.NewPDFService(conf),
		XLSXSvc:     exportsvc.NewXLSXService(),
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
