package logsvc

import (
	"log"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

// StdLogger only writes to a std logger. Used by the admin CLI and in tests.
type StdLogger struct {
	std *log.Logger
}

var _ core.Logger = (*StdLogger)(nil)

func NewStdLogger(std *log.Logger) *StdLogger {
	return &StdLogger{std: std}
}

// expected args: error, map[string]interface{}, user.User
func (l StdLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s: %s", level, msg)
	for _, arg := range args {
		if usr := asUser(arg); usr != nil {
			l.std.Printf("  user: %s", usr.Username)
			continue
		}
		l.std.Printf("  %+v", arg)
	}
}

func (l StdLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l StdLogger) Info(msg string, args ...interface{}) { l.print("INFO", msg, args) }
func (l StdLogger) Warn(msg string, args ...interface{}) { l.print("WARN", msg, args) }
func (l StdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

func (l StdLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}

func asUser(arg interface{}) *user.User {
	switch u := arg.(type) {
	case user.User:
		return &u
	case *user.User:
		return u
	}
	return nil
}
