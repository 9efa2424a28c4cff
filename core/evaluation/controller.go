package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/masomo-feedback/core"
)

var nowFunc = time.Now // mockable

// Steps
const (
	StepSelectDepartment Step = "select-department"
	StepEnterKey         Step = "enter-key"
	StepEvaluation       Step = "evaluation"
	StepSubmitted        Step = "submitted"
)

// SubmittedMessage is the confirmation shown after a successful submission.
const SubmittedMessage = "Thank you! Your evaluation has been submitted successfully."

// Step identifies the screen the respondent is on.
type Step string

type (
	// Phase is one of SelectDepartmentPhase, EnterKeyPhase, EvaluationPhase or SubmittedPhase.
	// Each phase only carries the data valid on its step.
	Phase interface {
		Step() Step
		isPhase()
	}

	SelectDepartmentPhase struct{}

	EnterKeyPhase struct {
		Department Department
		Key        string // as typed, not normalized
	}

	EvaluationPhase struct {
		department Department
		sessionID  SessionID
		questions  []Question
		responses  map[int]Response // {question_id: Response}
	}

	SubmittedPhase struct {
		Department Department
		Message    string
		At         time.Time
	}
)

func (SelectDepartmentPhase) Step() Step { return StepSelectDepartment }
func (EnterKeyPhase) Step() Step         { return StepEnterKey }
func (EvaluationPhase) Step() Step       { return StepEvaluation }
func (SubmittedPhase) Step() Step        { return StepSubmitted }

func (SelectDepartmentPhase) isPhase() {}
func (EnterKeyPhase) isPhase()         {}
func (EvaluationPhase) isPhase()       {}
func (SubmittedPhase) isPhase()        {}

func (p EvaluationPhase) Department() Department { return p.department }

func (p EvaluationPhase) SessionID() SessionID { return p.sessionID }

// Questions returns the questions in display order.
func (p EvaluationPhase) Questions() []Question {
	qs := make([]Question, len(p.questions))
	copy(qs, p.questions)
	return qs
}

func (p EvaluationPhase) Question(id int) (Question, bool) {
	for _, q := range p.questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (p EvaluationPhase) Response(questionID int) (Response, bool) {
	r, ok := p.responses[questionID]
	return r, ok
}

// Responses flattens the answers, in question order.
func (p EvaluationPhase) Responses() []Response {
	rs := make([]Response, 0, len(p.responses))
	for _, q := range p.questions {
		if r, ok := p.responses[q.ID]; ok {
			rs = append(rs, r)
		}
	}
	return rs
}

func (p EvaluationPhase) Answered() int { return len(p.responses) }

// IsComplete reports whether there are questions and every one of them has been answered.
func (p EvaluationPhase) IsComplete() bool {
	if len(p.questions) == 0 {
		return false
	}
	for _, q := range p.questions {
		if _, ok := p.responses[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Controller drives one respondent through select-department -> enter-key -> evaluation.
// It is not safe for concurrent use: callers serialize events.
type Controller struct {
	dir        Directory
	backend    Backend
	logger     core.Logger
	resetDelay time.Duration

	departments []Department
	phase       Phase
	submitting  bool
}

func NewController(dir Directory, backend Backend, logger core.Logger, resetDelay time.Duration) *Controller {
	return &Controller{
		dir:        dir,
		backend:    backend,
		logger:     logger,
		resetDelay: resetDelay,
		phase:      SelectDepartmentPhase{},
	}
}

// LoadDepartments fetches the department directory.
// A failure leaves an empty list; the returned *Error is informational.
func (c *Controller) LoadDepartments(ctx context.Context) error {
	deps, err := c.dir.ListDepartments(ctx)
	if err != nil {
		c.departments = nil
		c.logger.Warn(fmt.Sprintf("loading departments: %v", err), err)
		return newError(KindInfo, msgDepartmentsFailed, err)
	}
	c.departments = make([]Department, len(deps))
	copy(c.departments, deps)
	return nil
}

func (c *Controller) Departments() []Department {
	deps := make([]Department, len(c.departments))
	copy(deps, c.departments)
	return deps
}

func (c *Controller) ResetDelay() time.Duration { return c.resetDelay }

// Phase returns the current phase. A submitted phase turns back into select-department once the reset delay elapsed.
func (c *Controller) Phase() Phase {
	if p, ok := c.phase.(SubmittedPhase); ok && !nowFunc().Before(p.At.Add(c.resetDelay)) {
		c.Reset()
	}
	return c.phase
}

func (c *Controller) Step() Step { return c.Phase().Step() }

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool { return c.submitting }

// CanSubmit reports whether the submit action is enabled.
func (c *Controller) CanSubmit() bool {
	p, ok := c.Phase().(EvaluationPhase)
	return ok && !c.submitting && p.IsComplete()
}

// Reset drops everything but the department directory and goes back to select-department.
func (c *Controller) Reset() {
	c.phase = SelectDepartmentPhase{}
	c.submitting = false
}

// SelectDepartment picks the department to evaluate and moves to enter-key.
func (c *Controller) SelectDepartment(id int) error {
	switch c.Phase().(type) {
	case SelectDepartmentPhase:
	case SubmittedPhase:
		c.Reset()
	default:
		return newError(KindRetry, ErrWrongStep.Error(), ErrWrongStep)
	}
	for _, d := range c.departments {
		if d.ID == id {
			c.phase = EnterKeyPhase{Department: d}
			return nil
		}
	}
	return newError(KindRetry, ErrDepartmentNotFound.Error(), ErrDepartmentNotFound)
}

// SetKey keeps the partially entered key.
func (c *Controller) SetKey(key string) error {
	p, ok := c.Phase().(EnterKeyPhase)
	if !ok {
		return newError(KindRetry, ErrWrongStep.Error(), ErrWrongStep)
	}
	p.Key = key
	c.phase = p
	return nil
}

// Back returns from enter-key to select-department, dropping the department and the typed key.
func (c *Controller) Back() error {
	if _, ok := c.Phase().(EnterKeyPhase); !ok {
		return newError(KindRetry, ErrWrongStep.Error(), ErrWrongStep)
	}
	c.phase = SelectDepartmentPhase{}
	return nil
}

// SubmitKey validates the key against the backend and loads the department's questions.
// Every call is a fresh validation. Any failure keeps the respondent on enter-key.
func (c *Controller) SubmitKey(ctx context.Context, key string) error {
	p, ok := c.Phase().(EnterKeyPhase)
	if !ok {
		return newError(KindRetry, ErrWrongStep.Error(), ErrWrongStep)
	}
	p.Key = key
	c.phase = p

	key = NormalizeKey(key)
	if key == "" {
		return newError(KindRetry, ErrKeyRequired.Error(), ErrKeyRequired)
	}
	fp := map[string]interface{}{"key": KeyFingerprint(key)}

	sessionID, err := c.backend.StartEvaluation(ctx, p.Department.ID, key)
	if err != nil {
		c.logger.Info(fmt.Sprintf("evaluation key rejected: %v", err), p.Department, fp)
		return newError(KindRetry, backendMessage(err, msgInvalidKey), err)
	}
	if sessionID == "" {
		c.logger.Warn("evaluation key accepted without a session id", p.Department, fp)
		return newError(KindRetry, msgInvalidKey, ErrNoSession)
	}

	questions, err := c.backend.GetQuestions(ctx, p.Department.ID)
	if err != nil {
		c.logger.Error(fmt.Sprintf("loading questions: %v", err), err, p.Department, sessionID)
		return newError(KindRestart, backendMessage(err, msgQuestionsFailed), err)
	}
	if len(questions) == 0 {
		c.logger.Warn("no questions for department", p.Department, sessionID)
		return newError(KindRestart, msgNoQuestions, ErrNoQuestions)
	}
	qs := make([]Question, len(questions))
	copy(qs, questions)
	SortQuestions(qs)

	c.phase = EvaluationPhase{
		department: p.Department,
		sessionID:  sessionID,
		questions:  qs,
		responses:  make(map[int]Response, len(qs)),
	}
	c.logger.Info("evaluation started", p.Department, sessionID, fp)
	return nil
}

// Record stores the answer to a question, replacing any previous one.
// A blank Text answer marks the question as unanswered.
func (c *Controller) Record(questionID int, a Answer) error {
	p, ok := c.Phase().(EvaluationPhase)
	if !ok {
		return newError(KindRetry, ErrWrongStep.Error(), ErrWrongStep)
	}
	if c.submitting {
		return newError(KindRetry, ErrSubmitting.Error(), ErrSubmitting)
	}
	q, ok := p.Question(questionID)
	if !ok {
		return newError(KindRetry, ErrUnknownQuestion.Error(), ErrUnknownQuestion)
	}
	if txt, ok := a.(Text); ok && q.Scale == ScaleText && isBlank(string(txt)) {
		delete(p.responses, q.ID)
		return nil
	}
	r, err := NewResponse(q, a)
	if err != nil {
		return newError(KindRetry, err.Error(), err)
	}
	p.responses[q.ID] = r
	return nil
}

func (c *Controller) RecordScore(questionID, option int) error {
	return c.Record(questionID, Score(option))
}

func (c *Controller) RecordBoolean(questionID int, answer bool) error {
	return c.Record(questionID, BooleanAnswer(answer))
}

func (c *Controller) RecordText(questionID int, answer string) error {
	return c.Record(questionID, Text(answer))
}

// Submit sends every answer with the session id.
// On failure the evaluation is kept as is so the respondent can retry.
func (c *Controller) Submit(ctx context.Context) error {
	p, ok := c.Phase().(EvaluationPhase)
	if !ok {
		return newError(KindRetry, ErrWrongStep.Error(), ErrWrongStep)
	}
	if c.submitting {
		return newError(KindRetry, ErrSubmitting.Error(), ErrSubmitting)
	}
	if !p.IsComplete() {
		return newError(KindRetry, ErrIncomplete.Error(), ErrIncomplete)
	}

	c.submitting = true
	defer func() { c.submitting = false }()

	if err := c.backend.SubmitEvaluation(ctx, p.sessionID, p.Responses()); err != nil {
		c.logger.Error(fmt.Sprintf("submitting evaluation: %v", err), err, p.department, p.sessionID)
		return newError(KindRetry, backendMessage(err, msgSubmitFailed), err)
	}

	c.phase = SubmittedPhase{
		Department: p.department,
		Message:    SubmittedMessage,
		At:         nowFunc(),
	}
	c.logger.Info("evaluation submitted", p.department, p.sessionID)
	return nil
}
