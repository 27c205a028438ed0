//go:build !release

package assert

import (
	"fmt"

	"github.com/rs/zerolog"
)

// That panics with the formatted message when cond is false. Release builds log instead.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// Check is That for call sites that recover in release builds. It returns cond so the
// caller can bail out when the release build only logged.
func Check(_ *zerolog.Logger, cond bool, format string, args ...any) bool { //nolint:goprintffuncname // it's ok
	That(cond, format, args...)
	return cond
}
