package services

import "errors"

// GuardViolation is a recoverable workflow error: a transition attempted from
// the wrong state, points out of bounds, or a missed deadline without
// override. The message is safe to show to the user.
type GuardViolation struct {
	Reason string
}

func (e *GuardViolation) Error() string {
	return e.Reason
}

// ConfigurationError is an operator-facing misconfiguration: malformed field
// choices, a missing form template, OTHER routing without an approver email.
// It must fail loudly at the point of use.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return e.Detail
}

func guardViolation(reason string) error {
	return &GuardViolation{Reason: reason}
}

func configurationError(detail string) error {
	return &ConfigurationError{Detail: detail}
}

// IsGuardViolation reports whether err is a workflow guard failure.
func IsGuardViolation(err error) bool {
	var gv *GuardViolation
	return errors.As(err, &gv)
}

// IsConfigurationError reports whether err is an operator misconfiguration.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
