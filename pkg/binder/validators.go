package binder

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// urlValidator accepts absolute http(s) URLs or the empty string, which is how
// clients leave optional links like covers and previews unset.
func urlValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
