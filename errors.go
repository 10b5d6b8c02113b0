package workflow

import (
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

var (
	ErrKindAlreadyRegistered  = errors.New("workflow kind already registered", j.C("ERR_8c1f4a2d9b03e571"))
	ErrInvalidDefinition      = errors.New("invalid workflow definition", j.C("ERR_2e9d70c1a54f8b36"))
	ErrUnknownKind            = errors.New("unknown workflow kind", j.C("ERR_b47a0e92d1c6f583"))
	ErrEntityNotFound         = errors.New("entity not found", j.C("ERR_5d3c8b1f7a20e964"))
	ErrTerminalState          = errors.New("entity is in a terminal state", j.C("ERR_91e6f2a84c07d5b3"))
	ErrIllegalTransition      = errors.New("status transition is not permitted", j.C("ERR_4a7d91c3e85b2f60"))
	ErrMissingReason          = errors.New("transition requires a reason", j.C("ERR_c20b85f1d94a37e6"))
	ErrConcurrentModification = errors.New("entity was modified concurrently - reload and retry", j.C("ERR_7f05a3d68e21c9b4"))
	ErrCorruptHistory         = errors.New("entity history is inconsistent with its definition", j.C("ERR_e94b2c07d83f1a65"))
)
