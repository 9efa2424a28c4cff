package dig_container

import (
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoportal "github.com/trezcool/masomo-feedback/apps/portal/echo"
	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/evaluation"
	restbackend "github.com/trezcool/masomo-feedback/services/backend/rest"
	logsvc "github.com/trezcool/masomo-feedback/services/logger"
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	evaluation.InitValidators(validate, translator)
	return validate
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	dir evaluation.Directory,
	backend evaluation.Backend,
	validate *validator.Validate,
	translator ut.Translator,
) (*echoportal.Server, error) {
	return echoportal.NewServer(echoportal.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Directory:  dir,
		Backend:    backend,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(restbackend.NewClient, dig.As(new(evaluation.Directory), new(evaluation.Backend))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
