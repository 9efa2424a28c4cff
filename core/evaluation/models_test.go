package evaluation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-feedback/core"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: " ab12 ", want: "AB12"},
		{key: "XYZ1", want: "XYZ1"},
		{key: "\tcs-2026\n", want: "CS-2026"},
		{key: "   ", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.key); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q; want %q", tt.key, got, tt.want)
		}
	}
}

func TestKeyFingerprint(t *testing.T) {
	fp := KeyFingerprint("XYZ1")
	assert.Len(t, fp, 8)
	assert.Equal(t, fp, KeyFingerprint("XYZ1"))
	assert.NotEqual(t, fp, KeyFingerprint("XYZ2"))
	assert.NotContains(t, fp, "XYZ1")
}

func TestScaleType(t *testing.T) {
	tests := []struct {
		scale      ScaleType
		wantValid  bool
		wantPoints int
		wantOpts   int
	}{
		{scale: ScaleLikert5, wantValid: true, wantPoints: 5, wantOpts: 5},
		{scale: ScaleLikert10, wantValid: true, wantPoints: 10, wantOpts: 10},
		{scale: ScaleBoolean, wantValid: true, wantOpts: 2},
		{scale: ScaleText, wantValid: true},
		{scale: "likert_7"},
	}
	for _, tt := range tests {
		t.Run(string(tt.scale), func(t *testing.T) {
			assert.Equal(t, tt.wantValid, tt.scale.IsValid())
			assert.Equal(t, tt.wantPoints, tt.scale.Points())
			assert.Len(t, tt.scale.Options(), tt.wantOpts)
		})
	}
}

func TestNewResponse_fieldExclusivity(t *testing.T) {
	questions := map[ScaleType]Question{
		ScaleLikert5:  {ID: 1, Scale: ScaleLikert5},
		ScaleLikert10: {ID: 2, Scale: ScaleLikert10},
		ScaleBoolean:  {ID: 3, Scale: ScaleBoolean},
		ScaleText:     {ID: 4, Scale: ScaleText},
	}
	answers := []Answer{Score(1), BooleanAnswer(true), Text("fine")}

	for st, q := range questions {
		for _, a := range answers {
			r, err := NewResponse(q, a)
			var want bool
			switch a.(type) {
			case Score:
				want = st.IsLikert()
			case BooleanAnswer:
				want = st == ScaleBoolean
			case Text:
				want = st == ScaleText
			}
			if want {
				require.NoError(t, err, "%s <- %T", st, a)
				assert.Equal(t, q.ID, r.QuestionID)
			} else {
				assert.Equal(t, ErrScaleMismatch, err, "%s <- %T", st, a)
			}
		}
	}
}

func TestResponse_JSON(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{name: "score", resp: Response{QuestionID: 10, Answer: Score(4)}, want: `{"question_id":10,"score":4}`},
		{name: "boolean", resp: Response{QuestionID: 12, Answer: BooleanAnswer(false)}, want: `{"question_id":12,"boolean_answer":false}`},
		{name: "text", resp: Response{QuestionID: 11, Answer: Text("Great course")}, want: `{"question_id":11,"text_answer":"Great course"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Response
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.resp, back)
		})
	}

	t.Run("no answer", func(t *testing.T) {
		_, err := json.Marshal(Response{QuestionID: 1})
		assert.Error(t, err)
	})
	t.Run("two answers", func(t *testing.T) {
		var r Response
		assert.Error(t, json.Unmarshal([]byte(`{"question_id":1,"score":2,"text_answer":"x"}`), &r))
	})
}

func TestSessionID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		data string
		want SessionID
	}{
		{data: `{"session_id":42}`, want: "42"},
		{data: `{"session_id":"a1b2-c3"}`, want: "a1b2-c3"},
		{data: `{"session_id":null}`, want: ""},
		{data: `{}`, want: ""},
	}
	for _, tt := range tests {
		var res struct {
			SessionID SessionID `json:"session_id"`
		}
		if err := json.Unmarshal([]byte(tt.data), &res); err != nil {
			t.Errorf("json.Unmarshal(%s) failed: %v", tt.data, err)
			continue
		}
		if res.SessionID != tt.want {
			t.Errorf("json.Unmarshal(%s) = %q; want %q", tt.data, res.SessionID, tt.want)
		}
	}
}

func TestResponse_Format(t *testing.T) {
	tests := []struct {
		q    Question
		a    Answer
		want string
	}{
		{q: Question{Scale: ScaleLikert5}, a: Score(4), want: "4 (Agree)"},
		{q: Question{Scale: ScaleLikert10}, a: Score(7), want: "7"},
		{q: Question{Scale: ScaleBoolean}, a: BooleanAnswer(true), want: "Yes"},
		{q: Question{Scale: ScaleBoolean}, a: BooleanAnswer(false), want: "No"},
		{q: Question{Scale: ScaleText}, a: Text("Great course"), want: "Great course"},
	}
	for _, tt := range tests {
		if got := (Response{Answer: tt.a}).Format(tt.q); got != tt.want {
			t.Errorf("Format() = %q; want %q", got, tt.want)
		}
	}
}

func TestValidateQuestions(t *testing.T) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		qs      []Question
		wantErr bool
	}{
		{name: "valid", qs: []Question{{ID: 1, Text: "a", Scale: ScaleLikert5}, {ID: 2, Text: "b", Scale: ScaleText}}},
		{name: "empty", qs: nil},
		{name: "unknown scale", qs: []Question{{ID: 1, Text: "a", Scale: "stars"}}, wantErr: true},
		{name: "blank text", qs: []Question{{ID: 1, Text: "  ", Scale: ScaleBoolean}}, wantErr: true},
		{name: "missing id", qs: []Question{{Text: "a", Scale: ScaleBoolean}}, wantErr: true},
		{name: "duplicate id", qs: []Question{{ID: 1, Text: "a", Scale: ScaleText}, {ID: 1, Text: "b", Scale: ScaleText}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateQuestions(validate, tt.qs); (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuestions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDepartments(t *testing.T) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	assert.NoError(t, ValidateDepartments(validate, []Department{{ID: 1, Name: "CS"}}))
	assert.Error(t, ValidateDepartments(validate, []Department{{ID: 1, Name: " "}}))
	assert.Error(t, ValidateDepartments(validate, []Department{{Name: "CS"}}))
}
