package gamemode

import (
	"github.com/rotisserie/eris"
)

// Options toggle the optional systems of a match. Nil means "not set", which lets an
// extending config inherit the value.
type Options struct {
	Abilities       *bool  `json:"abilities,omitempty"`
	Kill            *bool  `json:"kill,omitempty"`
	Highscore       *bool  `json:"highscore,omitempty"`
	Respawn         *bool  `json:"respawn,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Enabled reports whether an option pointer is set to true.
func Enabled(b *bool) bool {
	return b != nil && *b
}

// On is a convenience for building Options literals.
func On() *bool {
	v := true
	return &v
}

func Off() *bool {
	v := false
	return &v
}

// fill copies every option of base that o leaves unset.
func (o *Options) fill(base Options) {
	if o.Abilities == nil {
		o.Abilities = base.Abilities
	}
	if o.Kill == nil {
		o.Kill = base.Kill
	}
	if o.Highscore == nil {
		o.Highscore = base.Highscore
	}
	if o.Respawn == nil {
		o.Respawn = base.Respawn
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = base.BackgroundColor
	}
}

// Config names a gamemode and its options. Extends lists configs whose options are
// inherited where this one is silent; earlier entries win over later ones.
type Config struct {
	Name     string   `json:"name"`
	Mode     string   `json:"mode"`
	Options  Options  `json:"options"`
	Extends  []string `json:"extends,omitempty"`
	Resource string   `json:"resource,omitempty"`
}

var ErrUnknownConfig = eris.New("unknown gamemode config")

// Resolve flattens the Extends chain of name using lookup. Cycles are an error.
func Resolve(name string, lookup func(string) (Config, bool)) (Config, error) {
	return resolve(name, lookup, map[string]bool{})
}

func resolve(name string, lookup func(string) (Config, bool), visiting map[string]bool) (Config, error) {
	if visiting[name] {
		return Config{}, eris.Errorf("gamemode config %q extends itself", name)
	}
	cfg, ok := lookup(name)
	if !ok {
		return Config{}, eris.Wrapf(ErrUnknownConfig, "config %q", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	for _, parentName := range cfg.Extends {
		parent, err := resolve(parentName, lookup, visiting)
		if err != nil {
			return Config{}, err
		}
		cfg.Options.fill(parent.Options)
		if cfg.Mode == "" {
			cfg.Mode = parent.Mode
		}
		if cfg.Resource == "" {
			cfg.Resource = parent.Resource
		}
	}
	if cfg.Mode == "" {
		cfg.Mode = cfg.Name
	}
	cfg.Extends = nil
	return cfg, nil
}
