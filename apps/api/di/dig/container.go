package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/exam"
	"github.com/trezcool/gradebook/core/mark"
	"github.com/trezcool/gradebook/core/result"
	"github.com/trezcool/gradebook/core/user"
	emailsvc "github.com/trezcool/gradebook/services/email"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	dummydb "github.com/trezcool/gradebook/storage/database/dummy"
	sqlxrepos "github.com/trezcool/gradebook/storage/database/sqlx"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage holds the repositories of the configured storage engine.
	Storage struct {
		dig.Out
		Users  user.Repository
		Exams  exam.Repository
		Marks  mark.Repository
		Closer StorageCloser
	}

	// StorageCloser releases the storage resources (the DB pool).
	StorageCloser func() error

	ServerParams struct {
		dig.In
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		ExamSvc    *exam.Service
		MarkSvc    *mark.Service
		ResultSvc  *result.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) Storage {
	switch conf.Storage {
	case core.StorageMemory:
		loggerParam.Logger.Info("using in-memory storage: data is lost on shutdown")
		db := dummydb.Open()
		return Storage{
			Users:  dummydb.NewUserRepository(db),
			Exams:  dummydb.NewExamRepository(db),
			Marks:  dummydb.NewMarkRepository(db),
			Closer: func() error { return nil },
		}

	case core.StoragePostgres:
		sqlDB, err := newDB(conf)
		if err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		db := sqlxrepos.New(sqlDB)
		return Storage{
			Users:  sqlxrepos.NewUserRepository(db),
			Exams:  sqlxrepos.NewExamRepository(db),
			Marks:  sqlxrepos.NewMarkRepository(db),
			Closer: sqlDB.Close,
		}
	}

	err := errors.Errorf("unknown storage engine %q", conf.Storage)
	loggerParam.Logger.Fatal(err.Error(), err)
	return Storage{}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newNotifier sends the results published emails when marks make results final.
func newNotifier(svc *result.Service) mark.Notifier {
	return svc
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		UserSvc:    p.UserSvc,
		ExamSvc:    p.ExamSvc,
		MarkSvc:    p.MarkSvc,
		ResultSvc:  p.ResultSvc,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(exam.NewService))
	must(c.Provide(result.NewService))
	must(c.Provide(newNotifier))
	must(c.Provide(mark.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
