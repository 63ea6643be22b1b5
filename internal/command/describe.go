package command

import (
	"errors"
	"strings"
)

// Translator formats a message key, as i18n.I18n.T does.
type Translator func(key string, args ...any) string

// IsUserError reports whether err came from bad command input rather than storage or IO.
func IsUserError(err error) bool {
	return errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrRowOutOfRange) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidDate)
}

// Describe turns a command input error into a user-facing message.
func Describe(err error, t Translator) string {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return t("error.unknown_command", detail(err, ErrUnknownCommand))
	case errors.Is(err, ErrRowOutOfRange):
		return t("error.row", detail(err, ErrRowOutOfRange))
	case errors.Is(err, ErrUsage):
		return t("error.usage", detail(err, ErrUsage))
	case errors.Is(err, ErrInvalidDate):
		return t("error.date", detail(err, ErrInvalidDate))
	default:
		return err.Error()
	}
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
