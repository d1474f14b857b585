package contract

import (
	"time"

	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

// Static is the base-operation default strategy: every declaration is a
// constant, independent of the prefix schema. Operations whose schema does
// not depend on what precedes them should embed or construct a Static
// contract directly rather than reimplementing Contract.
type Static struct {
	Reads             schema.FieldSet
	Sets              schema.FieldSet
	Deletes           []string
	Capability        *model.Capability
	Handler           ErrorHandler
	OpTimeout         *time.Duration
	CountChangeAllowed bool
}

var _ Contract = Static{}

func (s Static) DeclaredReads(schema.FieldSet) schema.FieldSet     { return s.Reads }
func (s Static) DeclaredSets(schema.FieldSet) schema.FieldSet      { return s.Sets }
func (s Static) DeclaredDeletes(schema.FieldSet) []string          { return s.Deletes }
func (s Static) RequiredCapability() *model.Capability             { return s.Capability }
func (s Static) ErrorHandler() ErrorHandler                        { return s.Handler }
func (s Static) Timeout() *time.Duration                           { return s.OpTimeout }
func (s Static) AllowsCountChange() bool                           { return s.CountChangeAllowed }
