package dpn

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel every malformed-net error unwraps to.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError describes why a net or its annotations were rejected.
type ConfigurationError struct {
	// Element is the identifier of the offending place, transition or arc.
	Element string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Element, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configError(element, format string, args ...interface{}) error {
	return &ConfigurationError{
		Element: element,
		Reason:  fmt.Sprintf(format, args...),
	}
}

var (
	NotEnabled = func(t string) error {
		return fmt.Errorf("transition %s is not enabled", t)
	}
)
