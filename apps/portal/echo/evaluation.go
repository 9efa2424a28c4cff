package echoportal

import (
	"net/http"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/evaluation"
)

var (
	actionSubmit = "submit"

	hintRestart = "Go back to pick the department again, or try again later."

	errInvalidAnswer = errors.New("please pick one of the proposed answers")
)

type evaluationPortal struct {
	appName    string
	validate   *validator.Validate
	translator ut.Translator
}

func registerEvaluationRoutes(
	e *echo.Echo,
	sessions echo.MiddlewareFunc,
	appName string,
	validate *validator.Validate,
	translator ut.Translator,
) {
	portal := evaluationPortal{
		appName:    appName,
		validate:   validate,
		translator: translator,
	}

	e.GET("/", portal.home, sessions)

	g := e.Group("/evaluation", sessions)
	g.POST("/department", portal.selectDepartment)
	g.POST("/key", portal.submitKey)
	g.POST("/back", portal.back)
	g.POST("/answers", portal.answer)
	g.POST("/reset", portal.reset)
}

type keyForm struct {
	Key string `json:"key" form:"key" validate:"notblank"`
}

func (f *keyForm) Validate(validate *validator.Validate, translator ut.Translator) error {
	return core.TranslateValidationErrors(validate.Struct(f), translator)
}

// render shows the visitor's current step, with err inline when set.
func (portal *evaluationPortal) render(ctx echo.Context, v *visitor, err error) error {
	code := http.StatusOK
	csrf, _ := ctx.Get("csrf").(string)
	pg := newPage(portal.appName, csrf, v.ctrl)

	if err != nil {
		code = http.StatusUnprocessableEntity
		pg.Error = err.Error()
		if evErr, ok := err.(*evaluation.Error); ok {
			switch evErr.Kind {
			case evaluation.KindInfo:
				code = http.StatusOK
			case evaluation.KindRestart:
				pg.Hint = hintRestart
			}
		}
	}
	return ctx.Render(code, string(pg.Step), pg)
}

// done redirects to the current step after a successful action.
func (portal *evaluationPortal) done(ctx echo.Context) error {
	return ctx.Redirect(http.StatusSeeOther, "/")
}

// Handlers

func (portal *evaluationPortal) home(ctx echo.Context) error {
	v, err := getContextVisitor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context visitor")
	}

	var loadErr error
	if v.ctrl.Step() == evaluation.StepSelectDepartment && !v.loaded {
		v.loaded = true
		loadErr = v.ctrl.LoadDepartments(ctx.Request().Context())
	}
	return portal.render(ctx, v, loadErr)
}

func (portal *evaluationPortal) selectDepartment(ctx echo.Context) error {
	v, err := getContextVisitor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context visitor")
	}

	id, _ := strconv.Atoi(ctx.FormValue("department_id"))
	if err := v.ctrl.SelectDepartment(id); err != nil {
		return portal.render(ctx, v, err)
	}
	return portal.done(ctx)
}

func (portal *evaluationPortal) submitKey(ctx echo.Context) error {
	v, err := getContextVisitor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context visitor")
	}

	var data keyForm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to keyForm")
	}
	if err := data.Validate(portal.validate, portal.translator); err != nil {
		if _, ok := err.(*core.ValidationError); !ok {
			return errors.Wrap(err, "validating keyForm")
		}
		if kErr := v.ctrl.SetKey(data.Key); kErr != nil {
			return portal.render(ctx, v, kErr)
		}
		return portal.render(ctx, v, evaluation.ErrKeyRequired)
	}

	if err := v.ctrl.SubmitKey(ctx.Request().Context(), data.Key); err != nil {
		return portal.render(ctx, v, err)
	}
	return portal.done(ctx)
}

func (portal *evaluationPortal) back(ctx echo.Context) error {
	v, err := getContextVisitor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context visitor")
	}

	if err := v.ctrl.Back(); err != nil {
		return portal.render(ctx, v, err)
	}
	return portal.done(ctx)
}

// answer records every answer found in the form; action=submit then submits the evaluation.
// Radio groups left untouched are absent from the form and keep their current answer.
func (portal *evaluationPortal) answer(ctx echo.Context) error {
	v, err := getContextVisitor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context visitor")
	}

	form, err := ctx.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form").SetInternal(err)
	}

	p, ok := v.ctrl.Phase().(evaluation.EvaluationPhase)
	if !ok {
		return portal.render(ctx, v, evaluation.ErrWrongStep)
	}

	var recordErr error
	for _, q := range p.Questions() {
		values, ok := form[questionField(q.ID)]
		if !ok || len(values) == 0 {
			continue
		}
		if err := record(v.ctrl, q, values[0]); err != nil && recordErr == nil {
			recordErr = err
		}
	}
	if recordErr != nil {
		return portal.render(ctx, v, recordErr)
	}

	if form.Get("action") == actionSubmit {
		if err := v.ctrl.Submit(ctx.Request().Context()); err != nil {
			return portal.render(ctx, v, err)
		}
	}
	return portal.done(ctx)
}

func record(ctrl *evaluation.Controller, q evaluation.Question, value string) error {
	switch q.Scale {
	case evaluation.ScaleLikert5, evaluation.ScaleLikert10:
		option, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errInvalidAnswer
		}
		return ctrl.RecordScore(q.ID, option)
	case evaluation.ScaleBoolean:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case booleanYes, "true":
			return ctrl.RecordBoolean(q.ID, true)
		case booleanNo, "false":
			return ctrl.RecordBoolean(q.ID, false)
		default:
			return errInvalidAnswer
		}
	default:
		return ctrl.RecordText(q.ID, value)
	}
}

func (portal *evaluationPortal) reset(ctx echo.Context) error {
	v, err := getContextVisitor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context visitor")
	}

	v.ctrl.Reset()
	v.loaded = false // reload the department directory
	return portal.done(ctx)
}
