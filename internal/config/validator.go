package config

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	flowerrors "github.com/alexisbeaulieu97/flowctl/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern     = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("flowctl_identifier", func(fl validator.FieldLevel) bool {
			return identifierPattern.MatchString(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}

// Validate runs struct-tag validation and the document's cross-field
// invariants (distinct stage names, distinct operation names within a
// stage).
func Validate(doc *Document) error {
	if doc == nil {
		return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, "", "document is nil", nil)
	}
	if err := validatorInstance().Struct(doc); err != nil {
		return convertValidationError(doc.Name, err)
	}

	seenStages := make(map[string]struct{}, len(doc.Stages))
	for _, stage := range doc.Stages {
		if _, dup := seenStages[stage.Name]; dup {
			return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, doc.Name,
				fmt.Sprintf("duplicate stage name %q", stage.Name), nil)
		}
		seenStages[stage.Name] = struct{}{}

		seenOps := make(map[string]struct{}, len(stage.Operations))
		for _, op := range stage.Operations {
			if op.Name == "" {
				continue
			}
			if _, dup := seenOps[op.Name]; dup {
				return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, stage.Name,
					fmt.Sprintf("duplicate operation name %q", op.Name), nil)
			}
			seenOps[op.Name] = struct{}{}
		}
	}

	return nil
}

func convertValidationError(subject string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !asValidationErrors(err, &fieldErrs) || len(fieldErrs) == 0 {
		return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, subject, err.Error(), err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
	}
	return flowerrors.NewConfigurationError(flowerrors.InvalidDocument, subject, strings.Join(parts, "; "), err)
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = ve
	return true
}
