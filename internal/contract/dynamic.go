package contract

import (
	"time"

	"github.com/alexisbeaulieu97/flowctl/internal/model"
	"github.com/alexisbeaulieu97/flowctl/internal/schema"
)

// Dynamic wraps a Static base and lets an operation override any subset of
// the prefix-dependent declaration queries — the "interface with two
// default strategies" design note: fields left nil fall back to Base.
type Dynamic struct {
	Base Static

	ReadsFn   func(prefix schema.FieldSet) schema.FieldSet
	SetsFn    func(prefix schema.FieldSet) schema.FieldSet
	DeletesFn func(prefix schema.FieldSet) []string
}

var _ Contract = Dynamic{}

func (d Dynamic) DeclaredReads(prefix schema.FieldSet) schema.FieldSet {
	if d.ReadsFn != nil {
		return d.ReadsFn(prefix)
	}
	return d.Base.DeclaredReads(prefix)
}

func (d Dynamic) DeclaredSets(prefix schema.FieldSet) schema.FieldSet {
	if d.SetsFn != nil {
		return d.SetsFn(prefix)
	}
	return d.Base.DeclaredSets(prefix)
}

func (d Dynamic) DeclaredDeletes(prefix schema.FieldSet) []string {
	if d.DeletesFn != nil {
		return d.DeletesFn(prefix)
	}
	return d.Base.DeclaredDeletes(prefix)
}

func (d Dynamic) RequiredCapability() *model.Capability { return d.Base.RequiredCapability() }
func (d Dynamic) ErrorHandler() ErrorHandler             { return d.Base.ErrorHandler() }
func (d Dynamic) Timeout() *time.Duration                { return d.Base.Timeout() }
func (d Dynamic) AllowsCountChange() bool                { return d.Base.AllowsCountChange() }
