package logsvc

import (
	"log"
	"os"

	"github.com/progressiveschool/progressive/core"
)

// ConsoleLogger writes to the standard logger only. It backs local
// development and tests where error reporting is unwanted.
type ConsoleLogger struct {
	std *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger) *ConsoleLogger {
	if std == nil {
		std = log.New(os.Stdout, "", log.LstdFlags|log.Lshortfile)
	}
	return &ConsoleLogger{std: std}
}

func (l ConsoleLogger) print(lvl, msg string, args []interface{}) {
	l.std.Println(lvl + ": " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l ConsoleLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l ConsoleLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l ConsoleLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l ConsoleLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }
func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	os.Exit(1)
}
