package gamemode

import (
	"github.com/rotisserie/eris"

	"github.com/argus-labs/arena/pkg/physics"
)

// HookFunc receives the payload passed to TriggerHook.
type HookFunc func(payload any)

// Built-in hooks, declared by the handler before any system is added.
const (
	HookDeath   = "death"
	HookRespawn = "respawn"
)

// DeathEvent is the payload of HookDeath.
type DeathEvent struct {
	Entity    *physics.Entity
	Player    string
	Abandoned bool
}

// RespawnEvent is the payload of HookRespawn.
type RespawnEvent struct {
	Entity *physics.Entity
	Player string
}

// hookRegistry keeps subscribers in subscription order.
type hookRegistry struct {
	hooks map[string][]HookFunc
}

func newHookRegistry() *hookRegistry {
	return &hookRegistry{hooks: make(map[string][]HookFunc)}
}

func (r *hookRegistry) add(name string) error {
	if _, ok := r.hooks[name]; ok {
		return eris.Wrapf(ErrDuplicateHook, "hook %q", name)
	}
	r.hooks[name] = []HookFunc{}
	return nil
}

func (r *hookRegistry) hookUp(name string, fn HookFunc) error {
	subs, ok := r.hooks[name]
	if !ok {
		return eris.Wrapf(ErrUndefinedHook, "hook up to %q", name)
	}
	r.hooks[name] = append(subs, fn)
	return nil
}

func (r *hookRegistry) trigger(name string, payload any) error {
	subs, ok := r.hooks[name]
	if !ok {
		return eris.Wrapf(ErrUndefinedHook, "trigger %q", name)
	}
	for _, fn := range subs {
		fn(payload)
	}
	return nil
}

func (r *hookRegistry) declared(name string) bool {
	_, ok := r.hooks[name]
	return ok
}

// AddHook declares name. Declaring the same hook twice is a configuration error.
func (h *Handler) AddHook(name string) error {
	return h.hooks.add(name)
}

// HookUp appends fn to the subscribers of a declared hook.
func (h *Handler) HookUp(name string, fn HookFunc) error {
	return h.hooks.hookUp(name, fn)
}

// TriggerHook calls every subscriber of name in subscription order.
func (h *Handler) TriggerHook(name string, payload any) error {
	return h.hooks.trigger(name, payload)
}

func (h *Handler) HasHook(name string) bool {
	return h.hooks.declared(name)
}

// Subscribe hooks up a subscriber that only sees payloads of type T. Payloads of any
// other type are logged and skipped.
func Subscribe[T any](h *Handler, name string, fn func(T)) error {
	return h.HookUp(name, func(payload any) {
		v, ok := payload.(T)
		if !ok {
			h.logger.Warn().Str("hook", name).Type("payload", payload).Msg("unexpected hook payload")
			return
		}
		fn(v)
	})
}
