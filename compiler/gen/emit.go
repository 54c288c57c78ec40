package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/sqlproc/compiler/load"
)

// DefaultHeader is added at the top of every generated file.
const DefaultHeader = "Code generated by sqlproc. DO NOT EDIT."

// receiver identifier used by every generated method.
const recv = "_impl"

// Emitter assembles generation units into jennifer files. Rendering is a
// pure function of the unit, so identical inputs produce byte-identical
// output.
type Emitter struct {
	header string
}

// NewEmitter creates an emitter from the given config.
func NewEmitter(cfg *Config) *Emitter {
	header := DefaultHeader
	if cfg != nil && cfg.Header != "" {
		header = cfg.Header
	}
	return &Emitter{header: header}
}

// EmitUnit renders one generated unit: the carrier struct and constructor
// when the user did not declare one, the interface conformance check, and
// one method body per binding, in declaration order.
func (e *Emitter) EmitUnit(u *Unit) (*jen.File, error) {
	f := jen.NewFilePathName(u.PkgPath, u.PkgName)
	f.HeaderComment(e.header)

	if u.Carrier == nil {
		e.emitCarrier(f, u)
	}

	f.Var().Id("_").Id(u.Name).Op("=").Parens(jen.Op("*").Id(u.ImplName)).Call(jen.Nil())

	for _, b := range u.Bindings {
		if err := e.emitMethod(f, u, b); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// emitCarrier declares the conventional carrier struct and its constructor.
func (e *Emitter) emitCarrier(f *jen.File, u *Unit) {
	f.Commentf("%s implements %s.", u.ImplName, u.Name)
	f.Type().Id(u.ImplName).Struct(
		jen.Id(DefaultContextField).Op("*").Qual(load.RuntimePkgPath, "Context"),
	)
	f.Commentf("New%s returns a %s backed by the given context.", u.ImplName, u.Name)
	f.Func().Id("New"+u.ImplName).Params(
		jen.Id(DefaultContextField).Op("*").Qual(load.RuntimePkgPath, "Context"),
	).Op("*").Id(u.ImplName).Block(
		jen.Return(jen.Op("&").Id(u.ImplName).Values(jen.Dict{
			jen.Id(DefaultContextField): jen.Id(DefaultContextField),
		})),
	)
}

// emitMethod synthesizes one implementation body with the original
// signature reproduced verbatim.
func (e *Emitter) emitMethod(f *jen.File, u *Unit, b *Binding) error {
	plan, err := planParams(u, b)
	if err != nil {
		return err
	}
	var class *Classification
	if b.Result != nil {
		c, cerr := Classify(b.Result)
		if cerr != nil {
			return NewTypeError(u.Name, b.Name, "", b.Result.String(), "unsupported result type")
		}
		class = &c
	}
	body, err := methodBody(u, b, plan, class)
	if err != nil {
		return err
	}
	fn := f.Func().
		Params(jen.Id(recv).Op("*").Id(u.ImplName)).
		Id(b.Name).
		Params(methodParams(u, b)...)
	if results := methodResults(u, b); len(results) == 1 {
		fn.Add(results[0])
	} else {
		fn.Params(results...)
	}
	fn.Block(body...)
	return nil
}

func methodParams(u *Unit, b *Binding) []jen.Code {
	var out []jen.Code
	if b.HasCtx {
		out = append(out, jen.Id("ctx").Qual("context", "Context"))
	}
	for _, p := range b.Params {
		out = append(out, jen.Id(p.Name).Add(typeCode(p.Type)))
	}
	return out
}

func methodResults(u *Unit, b *Binding) []jen.Code {
	if b.Result == nil {
		return []jen.Code{jen.Error()}
	}
	return []jen.Code{typeCode(b.Result), jen.Error()}
}

// typeCode renders a type reference. Qualified names resolve through the
// file's package path, so same-package types render unqualified.
func typeCode(r *load.TypeRef) jen.Code {
	switch r.Kind {
	case load.KindPointer:
		return jen.Op("*").Add(typeCode(r.Elem))
	case load.KindSlice:
		return jen.Index().Add(typeCode(r.Elem))
	case load.KindNamed:
		base := jen.Qual(r.PkgPath, r.Name)
		if len(r.Args) > 0 {
			args := make([]jen.Code, len(r.Args))
			for i, a := range r.Args {
				args[i] = typeCode(a)
			}
			base = base.Index(jen.List(args...))
		}
		return base
	default:
		return jen.Id(r.Name)
	}
}

// zeroCode renders the zero value returned on error paths.
func zeroCode(r *load.TypeRef) jen.Code {
	if r == nil {
		return jen.Nil()
	}
	switch r.Kind {
	case load.KindPointer, load.KindSlice:
		return jen.Nil()
	case load.KindBasic:
		return basicZero(r.Name)
	case load.KindNamed:
		if r.Under != nil {
			return basicZero(r.Under.Name)
		}
		return jen.Qual(r.PkgPath, r.Name).Values()
	default:
		return jen.Nil()
	}
}

func basicZero(name string) jen.Code {
	switch name {
	case "string":
		return jen.Lit("")
	case "bool":
		return jen.False()
	default:
		return jen.Lit(0)
	}
}

// nullCode renders the sql.Null instantiation for the given value type: the
// single database-null sentinel shared by binding, scanning and read-back.
func nullCode(r *load.TypeRef) jen.Code {
	return jen.Qual("database/sql", "Null").Index(typeCode(r))
}
