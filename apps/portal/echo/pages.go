package echoportal

import (
	"strconv"

	"github.com/trezcool/masomo-feedback/core/evaluation"
)

type (
	// page is the data every template receives.
	page struct {
		AppName   string
		CSRFToken string
		Step      evaluation.Step
		Error     string
		Hint      string

		// select-department
		Departments []evaluation.Department

		// enter-key, evaluation, submitted
		Department evaluation.Department

		// evaluation
		Questions  []questionView
		Answered   int
		CanSubmit  bool
		// Submitting only shows when the page renders during a submission;
		// the visitor lock serializes a visitor's requests, so the portal never does.
		Submitting bool

		// submitted
		Message        string
		RefreshSeconds int
	}

	questionView struct {
		Number     int
		ID         int
		Field      string
		Text       string
		Scale      evaluation.ScaleType
		Options    []optionView
		TextAnswer string
		Answered   bool
	}

	optionView struct {
		Value   string
		Label   string
		Checked bool
	}

	errorPage struct {
		AppName string
		Code    int
		Message interface{}
	}
)

const (
	booleanYes = "yes"
	booleanNo  = "no"
)

// questionField is the form field name holding the answer to question id.
func questionField(id int) string {
	return "q" + strconv.Itoa(id)
}

// newPage builds the view of the controller's current phase.
func newPage(appName, csrfToken string, ctrl *evaluation.Controller) page {
	pg := page{
		AppName:   appName,
		CSRFToken: csrfToken,
	}

	phase := ctrl.Phase()
	pg.Step = phase.Step()

	switch p := phase.(type) {
	case evaluation.SelectDepartmentPhase:
		pg.Departments = ctrl.Departments()
	case evaluation.EnterKeyPhase:
		pg.Department = p.Department
	case evaluation.EvaluationPhase:
		pg.Department = p.Department()
		pg.Answered = p.Answered()
		pg.CanSubmit = ctrl.CanSubmit()
		pg.Submitting = ctrl.Submitting()
		for i, q := range p.Questions() {
			pg.Questions = append(pg.Questions, newQuestionView(i+1, q, p))
		}
	case evaluation.SubmittedPhase:
		pg.Department = p.Department
		pg.Message = p.Message
		pg.RefreshSeconds = int(ctrl.ResetDelay().Seconds() + 0.999)
	}
	return pg
}

func newQuestionView(number int, q evaluation.Question, p evaluation.EvaluationPhase) questionView {
	qv := questionView{
		Number: number,
		ID:     q.ID,
		Field:  questionField(q.ID),
		Text:   q.Text,
		Scale:  q.Scale,
	}
	r, answered := p.Response(q.ID)
	qv.Answered = answered

	if txt, ok := r.Answer.(evaluation.Text); ok {
		qv.TextAnswer = string(txt)
	}

	labels := q.Scale.Options()
	for i, label := range labels {
		opt := optionView{Label: label}
		switch q.Scale {
		case evaluation.ScaleBoolean:
			opt.Value = booleanYes
			if i == 1 {
				opt.Value = booleanNo
			}
			if b, ok := r.Answer.(evaluation.BooleanAnswer); ok {
				opt.Checked = bool(b) == (opt.Value == booleanYes)
			}
		default:
			opt.Value = strconv.Itoa(i + 1)
			if s, ok := r.Answer.(evaluation.Score); ok {
				opt.Checked = int(s) == i+1
			}
		}
		qv.Options = append(qv.Options, opt)
	}
	return qv
}
