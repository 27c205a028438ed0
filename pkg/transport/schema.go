package transport

import (
	"github.com/invopop/jsonschema"

	"github.com/argus-labs/arena/pkg/leaderboard"
	"github.com/argus-labs/arena/pkg/match"
	"github.com/argus-labs/arena/pkg/physics"
)

// protocolSchema describes every frame and response a client has to understand.
func protocolSchema() map[string]any {
	return map[string]any{
		"envelope":   jsonschema.Reflect(Envelope{}),
		TypeInput:    jsonschema.Reflect(physics.ControlState{}),
		TypeButton:   jsonschema.Reflect(ButtonPayload{}),
		TypeError:    jsonschema.Reflect(ErrorPayload{}),
		"state":      jsonschema.Reflect(match.State{}),
		"players":    jsonschema.Reflect([]match.Player{}),
		"scoreboard": jsonschema.Reflect([]leaderboard.Entry{}),
	}
}
