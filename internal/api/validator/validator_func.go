package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	// Absolute http(s) URL or an app-relative path.
	redirectRegex = `^(https?://\S+|/\S*)$`
)

const (
	RedirectTag = "redirect"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	RedirectTag: ValidateRedirect,
}

func ValidateRedirect(fl validator.FieldLevel) bool {
	target := fl.Field().String()
	return regexp.MustCompile(redirectRegex).MatchString(target)
}
