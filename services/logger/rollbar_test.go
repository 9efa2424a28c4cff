package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/evaluation"
)

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{}
	err := errors.New("boom")
	dep := evaluation.Department{ID: 3, Name: "Physics", Code: "PHY"}

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "message only", want: []interface{}{"msg"}},
		{name: "error", args: []interface{}{err}, want: []interface{}{"msg", err}},
		{
			name: "department and session",
			args: []interface{}{err, dep, evaluation.SessionID("42")},
			want: []interface{}{"msg", err, map[string]interface{}{
				"department_id":   3,
				"department_code": "PHY",
				"session_id":      "42",
			}},
		},
		{
			name: "extras are merged",
			args: []interface{}{map[string]interface{}{"key": "ab12cd34"}, dep},
			want: []interface{}{"msg", map[string]interface{}{
				"key":             "ab12cd34",
				"department_id":   3,
				"department_code": "PHY",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.prepare("msg", tt.args))
		})
	}
}

func TestRollbarLogger_print(t *testing.T) {
	buf := new(bytes.Buffer)
	conf := &core.Config{Env: "TEST"}
	l := NewRollbarLogger(log.New(buf, "", 0), conf)
	l.Enable(false)

	l.Info("evaluation started", evaluation.SessionID("42"))
	assert.Equal(t, "evaluation started\n42\n", buf.String())
}
