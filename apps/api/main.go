package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/tmwangi/elimu/apps/api/echo"
	"github.com/tmwangi/elimu/core"
	"github.com/tmwangi/elimu/core/comment"
	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/report"
	"github.com/tmwangi/elimu/core/track"
	"github.com/tmwangi/elimu/core/user"
	certsvc "github.com/tmwangi/elimu/services/certificate"
	emailsvc "github.com/tmwangi/elimu/services/email"
	logsvc "github.com/tmwangi/elimu/services/logger"
	"github.com/tmwangi/elimu/storage/database"
	sqlxrepos "github.com/tmwangi/elimu/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig(".")
	if err != nil {
		log.Fatalf("loading config: %+v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(conf, sqlxrepos.NewUserRepository(db), mailSvc)
	crsSvc := course.NewService(sqlxrepos.NewCourseRepository(db))
	cmtSvc := comment.NewService(sqlxrepos.NewCommentRepository(db))
	trkSvc := track.NewService(sqlxrepos.NewTrackRepository(db))
	rptSvc := report.NewService(sqlxrepos.NewReportRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.RegisterAllRolesValidation(validate, translator)

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:      fmt.Sprintf(":%d", conf.Server.Port),
			Conf:         conf,
			Logger:       logger,
			Validate:     validate,
			Translator:   translator,
			Shutdown:     shutdown,
			CertRenderer: certsvc.NewPNGRenderer(conf),
			MailSvc:      mailSvc,
			UserSvc:      usrSvc,
			CourseSvc:    crsSvc,
			CommentSvc:   cmtSvc,
			TrackSvc:     trkSvc,
			ReportSvc:    rptSvc,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
