package logsvc

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/user"
)

// RollbarLogger writes structured entries to the console and reports them to Rollbar.
type RollbarLogger struct {
	log zerolog.Logger
	exit func(code int)
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger returns a logger writing to w, tagging every entry with component.
// Entries are pretty-printed in debug mode and written as JSON lines otherwise.
func NewRollbarLogger(w io.Writer, component string, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	if w == nil {
		w = os.Stdout
	}
	if conf.Debug {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	return &RollbarLogger{
		log:  zerolog.New(w).Level(level).With().Timestamp().Str("component", component).Logger(),
		exit: os.Exit,
	}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare splits args into what Rollbar expects and fills the console event.
// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(evt *zerolog.Event, msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for i, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if usrSet { // only set one User
				continue
			}
			rollbar.SetPerson(strconv.Itoa(a.ID), a.Username, "")
			evt.Int("user_id", a.ID).Str("username", a.Username)
			usrSet = true
		case error:
			evt.Str("error", fmt.Sprintf("%+v", a))
			newArgs = append(newArgs, a)
		case map[string]interface{}:
			evt.Fields(a)
			newArgs = append(newArgs, a)
		default:
			evt.Interface("arg"+strconv.Itoa(i), a)
			newArgs = append(newArgs, a)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	evt := l.log.Debug()
	rollbar.Debug(l.prepare(evt, msg, args)...)
	evt.Msg(msg)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	evt := l.log.Info()
	rollbar.Info(l.prepare(evt, msg, args)...)
	evt.Msg(msg)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	evt := l.log.Warn()
	rollbar.Warning(l.prepare(evt, msg, args)...)
	evt.Msg(msg)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	evt := l.log.Error()
	rollbar.Error(l.prepare(evt, msg, args)...)
	evt.Msg(msg)
}

// Fatal reports the entry, waits for Rollbar to flush, then exits.
func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	evt := l.log.WithLevel(zerolog.FatalLevel)
	rollbar.Critical(l.prepare(evt, msg, args)...)
	evt.Msg(msg)
	rollbar.Wait()
	l.exit(1)
}
