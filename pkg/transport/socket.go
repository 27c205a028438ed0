package transport

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"

	"github.com/argus-labs/arena/pkg/physics"
)

// Message types carried in Envelope.Type.
const (
	TypeInput  = "input"
	TypeButton = "button"
	TypeError  = "error"
)

// Envelope is the frame exchanged over /ws.
type Envelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"`
}

type ButtonPayload struct {
	Button string `json:"button"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func WebSocketUpgrader(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// handleSocket joins the player named by the query, forwards every frame to the match and
// leaves when the socket closes.
func (s *Server) handleSocket(conn *websocket.Conn) {
	id := conn.Query("id")
	name := conn.Query("name", id)
	logger := s.logger.With().Str("player", id).Logger()

	if id == "" {
		s.refuse(conn, "missing player id")
		return
	}
	if !s.claim(id) {
		s.refuse(conn, "player already connected")
		return
	}
	defer s.release(id)

	if err := s.game.Join(id, name); err != nil {
		logger.Warn().Err(err).Msg("join rejected")
		s.refuse(conn, "match is busy")
		return
	}
	logger.Debug().Msg("player connected")

	defer func() {
		if err := s.game.Leave(id); err != nil {
			logger.Warn().Err(err).Msg("leave dropped")
		}
		logger.Debug().Msg("player disconnected")
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := s.dispatch(id, msg); err != nil {
			logger.Debug().Err(err).Msg("bad frame")
			s.sendError(conn, err.Error())
		}
	}
}

func (s *Server) dispatch(id string, msg []byte) error {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return eris.Wrap(err, "invalid envelope")
	}

	switch env.Type {
	case TypeInput:
		var control physics.ControlState
		if err := json.Unmarshal(env.Payload, &control); err != nil {
			return eris.Wrap(err, "invalid input payload")
		}
		return s.game.Input(id, control)
	case TypeButton:
		var b ButtonPayload
		if err := json.Unmarshal(env.Payload, &b); err != nil {
			return eris.Wrap(err, "invalid button payload")
		}
		if b.Button == "" {
			return eris.New("button cannot be empty")
		}
		return s.game.Press(id, b.Button)
	default:
		return eris.Errorf("unknown message type %q", env.Type)
	}
}

func (s *Server) sendError(conn *websocket.Conn, message string) {
	payload, err := json.Marshal(ErrorPayload{Message: message})
	if err != nil {
		return
	}
	frame, err := json.Marshal(Envelope{Type: TypeError, Payload: payload})
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write error frame")
	}
}

func (s *Server) refuse(conn *websocket.Conn, reason string) {
	s.sendError(conn, reason)
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason))
}
