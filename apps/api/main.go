package main

import (
	"context"
	"log"
	"os"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/activity"
	"github.com/trezcool/shule/core/student"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
	gcsobj "github.com/trezcool/shule/storage/object/gcs"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	core.FrontendBaseURL = conf.FrontendBaseURL
	student.InitTokenGenerator(conf)

	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(std, err)
	defer db.Close()
	errAndDie(std, database.Ping(db))

	// apply pending migrations with the admin credentials
	adminDB, err := database.OpenAdmin(conf)
	errAndDie(std, err)
	errAndDie(std, database.Migrate(adminDB))
	errAndDie(std, adminDB.Close())

	// set up object storage
	blob, err := gcsobj.NewBlobStore(context.Background(), conf)
	errAndDie(std, err)
	defer blob.Close()

	validate, translator := core.NewValidator()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	stdSvc := student.NewService(sqlxrepos.NewStudentRepository(db), mailSvc)
	actSvc := activity.NewService(sqlxrepos.NewActivityRepository(db), blob, logger, validate)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:     conf.Server.Address(),
			AppConf:     conf,
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
			StudentSvc:  stdSvc,
			ActivitySvc: actSvc,
		},
	)
	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
