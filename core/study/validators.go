package study

import (
	"github.com/go-playground/validator/v10"

	"github.com/mustangstride/stride/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"

	sectionTag  = "section"
	sectionText = "invalid section"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(roleTag, roleText)

	_ = core.Validate.RegisterValidation(sectionTag, sectionValidation)
	core.RegisterCustomTranslation(sectionTag, sectionText)
}

// Custom Validators

// roleValidation checks that a provided role is in AllRoles.
func roleValidation(fl validator.FieldLevel) bool {
	return contains(AllRoles, fl.Field().String())
}

// sectionValidation checks that a provided section is in AllSections.
func sectionValidation(fl validator.FieldLevel) bool {
	return contains(AllSections, fl.Field().String())
}

func contains(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}
