package main

import (
	"database/sql"
	"log"
	"os"

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

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewStdLogger(log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))

	var (
		db       *sql.DB
		usrRepo  user.Repository
		examRepo exam.Repository
		markRepo mark.Repository
	)
	if conf.Storage == core.StorageMemory {
		mem := dummydb.Open()
		usrRepo = dummydb.NewUserRepository(mem)
		examRepo = dummydb.NewExamRepository(mem)
		markRepo = dummydb.NewMarkRepository(mem)
	} else {
		var err error
		if db, err = database.Open(conf); err != nil {
			logger.Fatal("opening database", err)
		}
		if err = db.Ping(); err != nil {
			logger.Fatal("pinging database", err)
		}
		sqlxDB := sqlxrepos.New(db)
		usrRepo = sqlxrepos.NewUserRepository(sqlxDB)
		examRepo = sqlxrepos.NewExamRepository(sqlxDB)
		markRepo = sqlxrepos.NewMarkRepository(sqlxDB)
	}

	// start CLI
	cli := commandLine{
		db:        db,
		usrSvc:    user.NewService(usrRepo),
		resultSvc: result.NewService(conf, logger, examRepo, markRepo, usrRepo, emailsvc.NewConsoleService(conf, logger)),
		out:       os.Stdout,
	}
	err := cli.run(os.Args)
	if db != nil {
		_ = db.Close()
	}
	if err != nil {
		if err != errHelp {
			logger.Error(err.Error(), err)
		}
		os.Exit(1)
	}
}
