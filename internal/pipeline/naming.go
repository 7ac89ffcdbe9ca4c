// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Lowercase letters, digits, and single hyphens between them.
var containerNameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("container_name", func(fl validator.FieldLevel) bool {
		return containerNameRe.MatchString(fl.Field().String())
	})
	return v
}

// ContainerNameProblems lists the storage naming rules that name breaks.
// The remote service is the authority on names, so the result is advisory.
func ContainerNameProblems(name string) []string {
	var problems []string
	for _, rule := range []struct {
		tag string
		msg string
	}{
		{"min=3,max=63", "container names must be from 3 through 63 characters long"},
		{"container_name", "container names may contain only lowercase letters, numbers, and single hyphens, and must start and end with a letter or number"},
	} {
		err := validate.Var(name, rule.tag)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			problems = append(problems, rule.msg)
		}
	}
	return problems
}
