package ruleset

import "errors"

// ConfigurationError reports an invalid or self-contradictory RuleSet. It is
// fatal to a check run: nothing is checked.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return "ruleset configuration error: " + e.Field + ": " + e.Message
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
