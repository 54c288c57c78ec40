package gen

import (
	"github.com/huandu/xstrings"

	"github.com/syssam/sqlproc/compiler/load"
)

// Direction is the binding direction of a parameter.
type Direction int

const (
	// In parameters carry a value into the command.
	In Direction = iota
	// Out parameters receive their value from execution; they get no value
	// assignment before the command runs.
	Out
	// InOut parameters carry a value in and receive one back.
	InOut
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Out:
		return "Out"
	case InOut:
		return "InOut"
	default:
		return "In"
	}
}

// SourceKind tells where the command text comes from.
type SourceKind int

const (
	// SourceProcedure builds the text from a procedure name and the external
	// parameter names.
	SourceProcedure SourceKind = iota
	// SourceRawText references the raw-command parameter supplied at the
	// call site.
	SourceRawText
)

// CommandSource is the origin of one binding's command text.
type CommandSource struct {
	Kind     SourceKind
	Proc     string // procedure name for SourceProcedure
	RawParam string // identifier of the raw-command parameter for SourceRawText
}

// Param is one parameter of a binding, in declaration order.
type Param struct {
	Name      string // internal identifier
	External  string // database-facing name, snake_cased, without the @ prefix
	Type      *load.TypeRef
	Direction Direction
	Raw       bool // the raw-command parameter; referenced, never bound
}

// Binding is the normalized description of one annotated declaration,
// immutable once built and consumed by every downstream component.
type Binding struct {
	Name   string
	HasCtx bool
	Result *load.TypeRef // nil for exec-only methods
	Params []*Param      // declaration order, raw-command parameter included
	Source CommandSource
}

// Bound returns the parameters that become bound command parameters, in
// declaration order. The raw-command parameter is excluded: it supplies
// text, not a value.
func (b *Binding) Bound() []*Param {
	out := make([]*Param, 0, len(b.Params))
	for _, p := range b.Params {
		if !p.Raw {
			out = append(out, p)
		}
	}
	return out
}

// Unit is one generated output: all bindings that share an enclosing
// interface, plus the connection strategy resolved once for the carrier.
type Unit struct {
	Name     string // enclosing interface name
	PkgPath  string
	PkgName  string
	Dir      string
	ImplName string
	OutName  string // output name override (empty: derived from Name)
	Carrier  *load.TypeRef
	Strategy Strategy
	Bindings []*Binding
}

// NewUnit converts a loaded interface into a generation unit: parameters get
// their external names and directions, command sources are fixed, and the
// connection strategy is resolved from the carrier's fields.
func NewUnit(iface *load.Interface) *Unit {
	u := &Unit{
		Name:     iface.Name,
		PkgPath:  iface.PkgPath,
		PkgName:  iface.PkgName,
		Dir:      iface.Dir,
		ImplName: iface.ImplName,
		OutName:  iface.OutName,
		Carrier:  iface.Carrier,
		Strategy: ResolveStrategy(iface.Carrier),
	}
	for _, m := range iface.Methods {
		u.Bindings = append(u.Bindings, newBinding(m))
	}
	return u
}

func newBinding(m *load.Method) *Binding {
	b := &Binding{
		Name:   m.Name,
		HasCtx: m.HasCtx,
		Result: m.Result,
	}
	if m.Query {
		b.Source = CommandSource{Kind: SourceRawText}
	} else {
		b.Source = CommandSource{Kind: SourceProcedure, Proc: m.Proc}
	}
	for _, p := range m.Params {
		np := &Param{
			Name:     p.Name,
			External: xstrings.ToSnakeCase(p.Name),
			Type:     p.Type,
			Raw:      p.Raw,
		}
		switch {
		case p.Out:
			np.Direction = Out
		case p.InOut:
			np.Direction = InOut
		}
		if p.Raw && b.Source.Kind == SourceRawText && b.Source.RawParam == "" {
			b.Source.RawParam = p.Name
		}
		b.Params = append(b.Params, np)
	}
	return b
}
