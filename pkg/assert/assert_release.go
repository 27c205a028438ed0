//go:build release

package assert

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		log.Warn().Str("component", "assert").Msgf(format, args...)
	}
}

func Check(logger *zerolog.Logger, cond bool, format string, args ...any) bool { //nolint:goprintffuncname // it's ok
	if cond {
		return true
	}
	if logger == nil {
		That(cond, format, args...)
		return false
	}
	logger.Warn().Msgf(format, args...)
	return false
}
