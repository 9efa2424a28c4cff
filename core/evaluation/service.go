package evaluation

import (
	"context"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/trezcool/masomo-feedback/core"
)

type (
	// Directory supplies the evaluable departments.
	Directory interface {
		ListDepartments(ctx context.Context) ([]Department, error)
	}

	// Backend validates keys, serves questions and accepts submissions.
	// Implementations make a single attempt per call and report rejections as *BackendError.
	Backend interface {
		StartEvaluation(ctx context.Context, departmentID int, key string) (SessionID, error)
		GetQuestions(ctx context.Context, departmentID int) ([]Question, error)
		SubmitEvaluation(ctx context.Context, sessionID SessionID, responses []Response) error
	}
)

// NormalizeKey trims and upper-cases an evaluation key.
func NormalizeKey(key string) string {
	return strings.ToUpper(core.CleanString(key))
}

// KeyFingerprint identifies a key in logs without revealing it.
func KeyFingerprint(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}

func isBlank(s string) bool {
	return core.CleanString(s) == ""
}
