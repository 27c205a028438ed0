package gamemode

import "github.com/rotisserie/eris"

// Configuration errors. Any of these aborts match setup.
var (
	ErrDuplicateHook             = eris.New("hook already declared")
	ErrUndefinedHook             = eris.New("hook not declared")
	ErrDuplicateExclusiveBinding = eris.New("player join is already claimed by another system")
	ErrEmptyCapabilities         = eris.New("system declared no capabilities")
	ErrMissingCapabilityMethod   = eris.New("system does not implement a declared capability")
	ErrDuplicateSystem           = eris.New("system already added")
	ErrAlreadyStarted            = eris.New("handler already started")
)

// Runtime errors.
var (
	ErrNoJoinSystem  = eris.New("no system handles player join")
	ErrUnknownPlayer = eris.New("unknown player")
)
