package testutil

import (
	"context"
	"strconv"
	"sync"

	"github.com/trezcool/masomo-feedback/core/evaluation"
)

// Submission is one call recorded by Backend.SubmitEvaluation.
type Submission struct {
	SessionID evaluation.SessionID
	Responses []evaluation.Response
}

// Backend is an in-memory evaluation.Directory and evaluation.Backend.
// Keys maps department IDs to their accepted (normalized) keys.
// The *Err fields make the matching call fail when set.
// OnSubmit, when set, runs at the start of SubmitEvaluation.
type Backend struct {
	Departments []evaluation.Department
	Questions   map[int][]evaluation.Question
	Keys        map[int][]string

	DepartmentsErr error
	StartErr       error
	QuestionsErr   error
	SubmitErr      error

	OnSubmit func()

	mu          sync.Mutex
	nextSession int
	ListCalls   int
	StartCalls  []string // keys as received
	Submissions []Submission
}

var (
	_ evaluation.Directory = (*Backend)(nil)
	_ evaluation.Backend   = (*Backend)(nil)
)

// NewBackend returns a Backend holding a single "CS" department (id 1), key "XYZ1"
// and the questions 10 (likert_5) and 11 (text). Sessions start at 42.
func NewBackend() *Backend {
	return &Backend{
		Departments: []evaluation.Department{
			{ID: 1, Name: "CS", Code: "CS", Description: "Computer Science"},
		},
		Questions: map[int][]evaluation.Question{
			1: {
				{ID: 10, Text: "The course was well organised", Scale: evaluation.ScaleLikert5, Order: 1},
				{ID: 11, Text: "Any other comments?", Scale: evaluation.ScaleText, Order: 2},
			},
		},
		Keys:        map[int][]string{1: {"XYZ1"}},
		nextSession: 42,
	}
}

func (b *Backend) ListDepartments(_ context.Context) ([]evaluation.Department, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ListCalls++
	if b.DepartmentsErr != nil {
		return nil, b.DepartmentsErr
	}
	return b.Departments, nil
}

func (b *Backend) StartEvaluation(_ context.Context, departmentID int, key string) (evaluation.SessionID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.StartCalls = append(b.StartCalls, key)
	if b.StartErr != nil {
		return "", b.StartErr
	}
	for _, k := range b.Keys[departmentID] {
		if k == key {
			id := evaluation.SessionID(strconv.Itoa(b.nextSession))
			b.nextSession++
			return id, nil
		}
	}
	return "", &evaluation.BackendError{Status: 400, Message: "Invalid or expired evaluation key"}
}

func (b *Backend) GetQuestions(_ context.Context, departmentID int) ([]evaluation.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.QuestionsErr != nil {
		return nil, b.QuestionsErr
	}
	return b.Questions[departmentID], nil
}

func (b *Backend) SubmitEvaluation(_ context.Context, sessionID evaluation.SessionID, responses []evaluation.Response) error {
	if b.OnSubmit != nil {
		b.OnSubmit()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SubmitErr != nil {
		return b.SubmitErr
	}
	rs := make([]evaluation.Response, len(responses))
	copy(rs, responses)
	b.Submissions = append(b.Submissions, Submission{SessionID: sessionID, Responses: rs})
	return nil
}

// LastSubmission returns the latest recorded submission, if any.
func (b *Backend) LastSubmission() (Submission, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Submissions) == 0 {
		return Submission{}, false
	}
	return b.Submissions[len(b.Submissions)-1], true
}
