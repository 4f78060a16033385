package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasa/core"
	"github.com/trezcool/madrasa/core/assignment"
	"github.com/trezcool/madrasa/core/dashboard"
	"github.com/trezcool/madrasa/core/grade"
	"github.com/trezcool/madrasa/core/gradingscale"
	"github.com/trezcool/madrasa/core/level"
	"github.com/trezcool/madrasa/core/mark"
	"github.com/trezcool/madrasa/core/nationality"
	"github.com/trezcool/madrasa/core/registration"
	"github.com/trezcool/madrasa/core/schoolyear"
	"github.com/trezcool/madrasa/core/subject"
	"github.com/trezcool/madrasa/core/user"
	"github.com/trezcool/madrasa/services/tokenstore"
)

type ServerDeps struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Tokens     tokenstore.Store

	UserSvc         *user.Service
	NationalitySvc  *nationality.Service
	LevelSvc        *level.Service
	GradeSvc        *grade.Service
	SubjectSvc      *subject.Service
	GradingScaleSvc *gradingscale.Service
	SchoolYearSvc   *schoolyear.Service
	RegistrationSvc *registration.Service
	AssignmentSvc   *assignment.Service
	MarkSvc         *mark.Service
	DashboardSvc    *dashboard.Service
}

type Server struct {
	deps     ServerDeps
	app      *echo.Echo
	auth     *authenticator
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.auth = newAuthenticator(deps.Conf, deps.Tokens, deps.UserSvc)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.CORSAllowOrigins}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	authed := s.auth.middleware()

	registerLoginAPI(v1, authed, s.auth, s.deps)
	registerUserAPI(v1, authed, s.deps)
	registerStudentAPI(v1, authed, s.deps)
	registerNationalityAPI(v1, authed, s.deps)
	registerLevelAPI(v1, authed, s.deps)
	registerGradeAPI(v1, authed, s.deps)
	registerSubjectAPI(v1, authed, s.deps)
	registerSubjectGradeAPI(v1, authed, s.deps)
	registerGradingScaleAPI(v1, authed, s.deps)
	registerSchoolYearAPI(v1, authed, s.deps)
	registerRegistrationAPI(v1, authed, s.deps)
	registerTeacherAPI(v1, authed, s.deps)
	registerMarkAPI(v1, authed, s.deps)
	registerDashboardAPI(v1, authed, s.deps)
}

// Start listens until the server is shut down. Listening errors are sent to Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- errors.Wrap(err, "starting server")
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the app to shut the server down gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
