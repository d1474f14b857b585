// Package operation defines the operation factory surface: a constructor
// that accepts per-instance configuration and produces a long-lived
// Operation, whose Create method yields a fresh Callable per stage
// invocation.
package operation

import (
	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
)

// Callable is the signature every operation invocation runs:
// [Namespace] -> [Namespace]. Output length equals input length unless the
// operation's contract declares AllowsCountChange.
type Callable func(inputs []namespace.Namespace) ([]namespace.Namespace, error)

// Operation is a configured, process-lived unit of work. Create is called
// once per stage invocation to obtain a fresh Callable; Contract is queried
// by the schema propagator and the executor.
type Operation interface {
	Contract() contract.Contract
	Create() Callable
	// Name identifies the operation for error messages and observability;
	// an empty Name renders as "Anonymous Operation".
	Name() string
}

// Config carries the per-instance configuration a Factory uses to build an
// Operation: the declared options block from the config document, plus an
// optional resolved model record name for operations requiring a
// capability.
type Config struct {
	Type        string
	Name        string
	ModelName   string
	Options     map[string]any
	Timeout     float64
	TimeoutSet  bool
}

// Factory constructs Operation instances of one operation-id from a Config.
type Factory interface {
	New(cfg Config) (Operation, error)
}

// FactoryFunc adapts a plain function to the Factory interface.
type FactoryFunc func(cfg Config) (Operation, error)

// New implements Factory.
func (f FactoryFunc) New(cfg Config) (Operation, error) { return f(cfg) }
