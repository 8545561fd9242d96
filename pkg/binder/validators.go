package binder

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// abspathValidator ensures the value is an absolute filesystem path or the
// empty string. The empty string is allowed so that this validator can be used
// to clear out values; add `required` to the validate tag if the value must be
// present.
func abspathValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return filepath.IsAbs(value)
}

// pathTemplateValidator ensures the value looks like a naming template: it
// must not be an absolute path, must not escape its root with "..", and any
// braces must be balanced.
func pathTemplateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if filepath.IsAbs(value) {
		return false
	}
	for _, part := range strings.Split(value, "/") {
		if part == ".." {
			return false
		}
	}
	return strings.Count(value, "{") == strings.Count(value, "}")
}
