package builtin

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/flowctl/internal/contract"
	"github.com/alexisbeaulieu97/flowctl/internal/namespace"
	"github.com/alexisbeaulieu97/flowctl/internal/operation"
	"github.com/alexisbeaulieu97/flowctl/internal/ports"
)

type logOperation struct {
	name    string
	message string
	fields  []string
	logger  ports.Logger
	c       contract.Contract
}

// NewLog constructs a Log operation: a pass-through that emits one log
// line per input namespace, carrying message plus the values of fields (in
// declared order). It never mutates its input.
func NewLog(name, message string, fields []string, logger ports.Logger) operation.Operation {
	return &logOperation{name: name, message: message, fields: fields, logger: logger, c: contract.Static{}}
}

func (l *logOperation) Name() string { return l.name }
func (l *logOperation) Contract() contract.Contract { return l.c }

func (l *logOperation) Create() operation.Callable {
	return func(ins []namespace.Namespace) ([]namespace.Namespace, error) {
		if l.logger != nil {
			for _, ns := range ins {
				pairs := make([]interface{}, 0, len(l.fields)*2)
				for _, f := range l.fields {
					v, ok := ns.Get(f)
					if !ok {
						continue
					}
					pairs = append(pairs, f, v)
				}
				l.logger.Info(context.Background(), fmt.Sprintf("%s: %s", l.name, l.message), pairs...)
			}
		}
		return ins, nil
	}
}
