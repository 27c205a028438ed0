package match

import (
	"maps"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/argus-labs/arena/pkg/gamemode"
	"github.com/argus-labs/arena/pkg/gamemode/modes"
	"github.com/argus-labs/arena/pkg/gamemode/systems"
)

var ErrUnknownGamemode = eris.New("unknown gamemode")

// Catalog maps config names to gamemode configs, and mode names to constructors.
type Catalog struct {
	configs map[string]gamemode.Config
	modes   map[string]func() gamemode.Gamemode
}

func NewCatalog() *Catalog {
	return &Catalog{
		configs: make(map[string]gamemode.Config),
		modes:   make(map[string]func() gamemode.Gamemode),
	}
}

// DefaultCatalog holds the built-in gamemodes.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.RegisterMode("test", func() gamemode.Gamemode { return modes.NewScripted() })
	c.RegisterMode("knockoff", func() gamemode.Gamemode { return modes.NewKnockOff() })
	c.RegisterMode("hockey", func() gamemode.Gamemode { return modes.NewHockey() })

	c.Add(gamemode.Config{Name: "test", Options: gamemode.Options{BackgroundColor: "#202020"}})
	c.Add(gamemode.Config{
		Name: "knockoff",
		Options: gamemode.Options{
			Kill:            gamemode.On(),
			Highscore:       gamemode.On(),
			Respawn:         gamemode.On(),
			BackgroundColor: "#1b1b2f",
		},
	})
	c.Add(gamemode.Config{
		Name:    "knockoff-abilities",
		Options: gamemode.Options{Abilities: gamemode.On()},
		Extends: []string{"knockoff"},
	})
	c.Add(gamemode.Config{Name: "hockey", Options: gamemode.Options{BackgroundColor: "#0b6623"}})
	return c
}

func (c *Catalog) Add(cfg gamemode.Config) {
	c.configs[cfg.Name] = cfg
}

func (c *Catalog) RegisterMode(mode string, build func() gamemode.Gamemode) {
	c.modes[mode] = build
}

func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.configs))
}

func (c *Catalog) lookup(name string) (gamemode.Config, bool) {
	cfg, ok := c.configs[name]
	return cfg, ok
}

// setup is a resolved catalog entry ready to be installed into a handler.
type setup struct {
	config   gamemode.Config
	gamemode gamemode.Gamemode
	systems  []gamemode.System
	kill     *systems.Kill
}

// build resolves name and instantiates its gamemode and systems in the fixed order
// abilities, kill, highscore, respawn, spawn.
func (c *Catalog) build(name string, sink systems.Sink) (setup, error) {
	cfg, err := gamemode.Resolve(name, c.lookup)
	if err != nil {
		return setup{}, eris.Wrapf(ErrUnknownGamemode, "%v", err)
	}
	newMode, ok := c.modes[cfg.Mode]
	if !ok {
		return setup{}, eris.Wrapf(ErrUnknownGamemode, "config %q uses mode %q", name, cfg.Mode)
	}

	s := setup{config: cfg, gamemode: newMode()}
	opts := cfg.Options
	if gamemode.Enabled(opts.Abilities) {
		s.systems = append(s.systems, systems.NewAbility())
	}
	if gamemode.Enabled(opts.Kill) {
		s.kill = systems.NewKill()
		s.systems = append(s.systems, s.kill)
	}
	if gamemode.Enabled(opts.Highscore) {
		s.systems = append(s.systems, systems.NewHighscore(sink))
	}
	if gamemode.Enabled(opts.Respawn) {
		s.systems = append(s.systems, systems.NewRespawn())
	}
	s.systems = append(s.systems, systems.NewSpawn())
	return s, nil
}
