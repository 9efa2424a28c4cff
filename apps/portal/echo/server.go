package echoportal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/evaluation"
)

type (
	// ServerDeps are the collaborators of the portal.
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Directory  evaluation.Directory
		Backend    evaluation.Backend
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		app      *echo.Echo
		deps     ServerDeps
		sessions *sessionStore
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) (*Server, error) {
	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		app:      echo.New(),
		deps:     deps,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.sessions = newSessionStore(
		deps.Conf.SecretKey,
		deps.Conf.AppName,
		deps.Conf.Server.SessionTTL,
		func() *evaluation.Controller {
			return evaluation.NewController(deps.Directory, deps.Backend, deps.Logger, deps.Conf.Evaluation.ResetDelay)
		},
	)
	s.app.Renderer = renderer
	s.setup()

	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s, nil
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.Secure())
	s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   !conf.Debug,
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(conf.AppName, s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/health", s.health)

	registerEvaluationRoutes(
		s.app,
		s.sessions.middleware(!conf.Debug),
		conf.AppName,
		s.deps.Validate,
		s.deps.Translator,
	)
}

// Start listens until the server is shut down. Listening failures are reported on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signalled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	signal.Stop(s.shutdown)
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"build":    s.deps.Conf.Build,
		"visitors": s.sessions.len(),
	})
}
