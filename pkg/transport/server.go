// Package transport exposes a running match over HTTP and websockets.
package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/coocood/freecache"
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/argus-labs/arena/pkg/leaderboard"
	"github.com/argus-labs/arena/pkg/match"
	"github.com/argus-labs/arena/pkg/physics"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100

	// leaderboardCacheSize is the freecache arena in bytes; freecache enforces a 512KB minimum.
	leaderboardCacheSize = 512 * 1024
	leaderboardCacheTTL  = 1 // seconds
)

// Game is the part of a match the transport talks to.
type Game interface {
	ID() string
	Gamemode() string
	Join(id, name string) error
	Leave(id string) error
	Input(id string, control physics.ControlState) error
	Press(id, button string) error
	State() match.State
	Players() []match.Player
}

var _ Game = (*match.Match)(nil)

type Server struct {
	app    *fiber.App
	game   Game
	board  leaderboard.Store
	cache  *freecache.Cache
	schema map[string]any
	logger zerolog.Logger

	running   atomic.Bool
	mu        sync.Mutex
	connected map[string]struct{}
}

// New registers every route. board may be nil, in which case /leaderboard is not served.
func New(game Game, board leaderboard.Store, logger zerolog.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          ErrorHandler,
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
		}),
		game:      game,
		board:     board,
		cache:     freecache.NewCache(leaderboardCacheSize),
		schema:    protocolSchema(),
		logger:    logger.With().Str("component", "transport").Logger(),
		connected: make(map[string]struct{}),
	}

	s.app.Get("/health", s.getHealth)
	s.app.Get("/players", s.getPlayers)
	s.app.Get("/state", s.getState)
	s.app.Get("/schema", s.getSchema)
	if board != nil {
		s.app.Get("/leaderboard", s.getLeaderboard)
	}
	s.app.Use("/ws", WebSocketUpgrader)
	s.app.Get("/ws", websocket.New(s.handleSocket))
	return s
}

// App is exposed for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve blocks until the listener is closed or the server shuts down.
func (s *Server) Serve(ln net.Listener) error {
	s.running.Store(true)
	defer s.running.Store(false)
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("serving")
	if err := s.app.Listener(ln); err != nil {
		return eris.Wrap(err, "server stopped")
	}
	return nil
}

// Run listens on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return eris.Wrapf(err, "failed to listen on %s", addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		return <-errCh
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return eris.Wrap(s.app.ShutdownWithContext(ctx), "failed to shut down server")
}

type HealthResponse struct {
	IsServerRunning bool   `json:"isServerRunning"`
	MatchID         string `json:"matchId"`
	Gamemode        string `json:"gamemode"`
	Tick            uint64 `json:"tick"`
}

func (s *Server) getHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		IsServerRunning: true,
		MatchID:         s.game.ID(),
		Gamemode:        s.game.Gamemode(),
		Tick:            s.game.State().Tick,
	})
}

func (s *Server) getPlayers(c *fiber.Ctx) error {
	return c.JSON(s.game.Players())
}

func (s *Server) getState(c *fiber.Ctx) error {
	return c.JSON(s.game.State())
}

func (s *Server) getLeaderboard(c *fiber.Ctx) error {
	n := defaultLeaderboardSize
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxLeaderboardSize {
			return fiber.NewError(fiber.StatusBadRequest, "n must be an integer between 1 and 100")
		}
		n = v
	}

	key := []byte("top:" + strconv.Itoa(n))
	if body, err := s.cache.Get(key); err == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}

	entries, err := s.board.Top(c.UserContext(), n)
	if err != nil {
		s.logger.Error().Err(err).Msg("leaderboard query failed")
		return fiber.NewError(fiber.StatusServiceUnavailable, "leaderboard unavailable")
	}
	body, err := json.Marshal(entries)
	if err != nil {
		return eris.Wrap(err, "failed to encode leaderboard")
	}
	if err := s.cache.Set(key, body, leaderboardCacheTTL); err != nil {
		s.logger.Debug().Err(err).Msg("failed to cache leaderboard")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (s *Server) getSchema(c *fiber.Ctx) error {
	return c.JSON(s.schema)
}

// claim marks id as connected. A second socket for the same player is refused.
func (s *Server) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connected[id]; ok {
		return false
	}
	s.connected[id] = struct{}{}
	return true
}

func (s *Server) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connected, id)
}

type ErrorResponse struct {
	Error Error `json:"error"`
}

type Error struct {
	Message string `json:"message"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(ErrorResponse{Error: Error{Message: err.Error()}})
}
