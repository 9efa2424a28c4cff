package evaluation

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Scale types
const (
	ScaleLikert5  ScaleType = "likert_5"
	ScaleLikert10 ScaleType = "likert_10"
	ScaleBoolean  ScaleType = "boolean"
	ScaleText     ScaleType = "text"
)

var (
	ScaleTypes = []ScaleType{ScaleLikert5, ScaleLikert10, ScaleBoolean, ScaleText}

	likert5Labels  = []string{"Strongly Disagree", "Disagree", "Neutral", "Agree", "Strongly Agree"}
	likert10Labels = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	booleanLabels  = []string{"Yes", "No"}
)

// ScaleType is the answer shape a question expects.
type ScaleType string

func (st ScaleType) IsValid() bool {
	for _, s := range ScaleTypes {
		if st == s {
			return true
		}
	}
	return false
}

func (st ScaleType) IsLikert() bool {
	return st == ScaleLikert5 || st == ScaleLikert10
}

// Points is the number of options of a Likert scale, 0 otherwise.
func (st ScaleType) Points() int {
	switch st {
	case ScaleLikert5:
		return 5
	case ScaleLikert10:
		return 10
	default:
		return 0
	}
}

// Options returns the ordered option labels for choice scales; text questions have none.
func (st ScaleType) Options() []string {
	switch st {
	case ScaleLikert5:
		return likert5Labels
	case ScaleLikert10:
		return likert10Labels
	case ScaleBoolean:
		return booleanLabels
	default:
		return nil
	}
}

type Department struct {
	ID          int    `json:"id" validate:"gt=0"`
	Name        string `json:"name" validate:"notblank"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

func (d Department) String() string {
	if d.Code == "" {
		return d.Name
	}
	return d.Code + " - " + d.Name
}

type Question struct {
	ID    int       `json:"id" validate:"gt=0"`
	Text  string    `json:"question_text" validate:"notblank"`
	Scale ScaleType `json:"scale_type" validate:"scaletype"`
	Order int       `json:"order"`
}

// SortQuestions orders questions by their ordering index, then by ID.
func SortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		if qs[i].Order != qs[j].Order {
			return qs[i].Order < qs[j].Order
		}
		return qs[i].ID < qs[j].ID
	})
}

// SessionID is the opaque, backend-issued evaluation session handle.
type SessionID string

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *SessionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SessionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "decoding session id")
	}
	*id = SessionID(n.String())
	return nil
}

func (id SessionID) String() string { return string(id) }

// Answer is one of Score, BooleanAnswer or Text.
type Answer interface {
	fits(ScaleType) bool
}

// Score is the 1-based option index picked on a Likert scale.
type Score int

// BooleanAnswer is a Yes (true) / No (false) answer.
type BooleanAnswer bool

// Text is a free text answer.
type Text string

func (Score) fits(st ScaleType) bool         { return st.IsLikert() }
func (BooleanAnswer) fits(st ScaleType) bool { return st == ScaleBoolean }
func (Text) fits(st ScaleType) bool          { return st == ScaleText }

// Response is one answer to one question.
type Response struct {
	QuestionID int
	Answer     Answer
}

// NewResponse builds a Response for q, making sure the answer matches the question's scale.
func NewResponse(q Question, a Answer) (Response, error) {
	if a == nil || !a.fits(q.Scale) {
		return Response{}, ErrScaleMismatch
	}
	switch v := a.(type) {
	case Score:
		if int(v) < 1 || int(v) > q.Scale.Points() {
			return Response{}, ErrOutOfRange
		}
	case Text:
		if isBlank(string(v)) {
			return Response{}, ErrBlankAnswer
		}
	}
	return Response{QuestionID: q.ID, Answer: a}, nil
}

type responseJSON struct {
	QuestionID    int     `json:"question_id"`
	Score         *int    `json:"score,omitempty"`
	BooleanAnswer *bool   `json:"boolean_answer,omitempty"`
	TextAnswer    *string `json:"text_answer,omitempty"`
}

// MarshalJSON populates exactly one answer field.
func (r Response) MarshalJSON() ([]byte, error) {
	out := responseJSON{QuestionID: r.QuestionID}
	switch v := r.Answer.(type) {
	case Score:
		n := int(v)
		out.Score = &n
	case BooleanAnswer:
		b := bool(v)
		out.BooleanAnswer = &b
	case Text:
		s := string(v)
		out.TextAnswer = &s
	default:
		return nil, errors.Errorf("response to question %d has no answer", r.QuestionID)
	}
	return json.Marshal(out)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	var in responseJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var answers []Answer
	if in.Score != nil {
		answers = append(answers, Score(*in.Score))
	}
	if in.BooleanAnswer != nil {
		answers = append(answers, BooleanAnswer(*in.BooleanAnswer))
	}
	if in.TextAnswer != nil {
		answers = append(answers, Text(*in.TextAnswer))
	}
	if len(answers) != 1 {
		return errors.Errorf("response to question %d must carry exactly one answer, got %d", in.QuestionID, len(answers))
	}
	r.QuestionID = in.QuestionID
	r.Answer = answers[0]
	return nil
}

// Format renders the answer the way the respondent picked it.
func (r Response) Format(q Question) string {
	switch v := r.Answer.(type) {
	case Score:
		labels := q.Scale.Options()
		if i := int(v) - 1; i >= 0 && i < len(labels) {
			if q.Scale == ScaleLikert10 {
				return labels[i]
			}
			return strconv.Itoa(int(v)) + " (" + labels[i] + ")"
		}
		return strconv.Itoa(int(v))
	case BooleanAnswer:
		if v {
			return booleanLabels[0]
		}
		return booleanLabels[1]
	case Text:
		return string(v)
	default:
		return ""
	}
}
