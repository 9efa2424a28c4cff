package evaluation

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-feedback/core"
)

var (
	scaleTypeTag  = "scaletype"
	scaleTypeText = "scale type must be one of " + joinScaleTypes()
)

func joinScaleTypes() string {
	names := make([]string, 0, len(ScaleTypes))
	for _, st := range ScaleTypes {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}

// InitValidators registers the evaluation validators. core.InitValidators must have been called on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(scaleTypeTag, scaleTypeValidation)
	core.RegisterCustomTranslation(validate, translator, scaleTypeTag, scaleTypeText)
}

// ValidateDepartments checks every department sent by the directory.
func ValidateDepartments(validate *validator.Validate, deps []Department) error {
	for i := range deps {
		if err := validate.Struct(deps[i]); err != nil {
			return errors.Wrap(err, fmt.Sprintf("department #%d", i))
		}
	}
	return nil
}

// ValidateQuestions checks every question sent by the backend, including ID uniqueness.
func ValidateQuestions(validate *validator.Validate, qs []Question) error {
	seen := make(map[int]struct{}, len(qs))
	for i := range qs {
		if err := validate.Struct(qs[i]); err != nil {
			return errors.Wrap(err, fmt.Sprintf("question #%d", i))
		}
		if _, dup := seen[qs[i].ID]; dup {
			return errors.Errorf("question #%d: duplicate id %d", i, qs[i].ID)
		}
		seen[qs[i].ID] = struct{}{}
	}
	return nil
}

// Custom Validators

func scaleTypeValidation(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case ScaleType:
		return v.IsValid()
	case string:
		return ScaleType(v).IsValid()
	default:
		return false
	}
}
