package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/sqlproc/compiler/load"
)

// methodBody synthesizes the statements of one generated method: the
// context fallback, destination locals, command text, bound arguments and
// the execution strategy selected by the result classification.
func methodBody(u *Unit, b *Binding, plan []*boundParam, class *Classification) ([]jen.Code, error) {
	var stmts []jen.Code
	if !b.HasCtx {
		stmts = append(stmts, jen.Id("ctx").Op(":=").Qual("context", "Background").Call())
	}
	for _, bp := range outParams(plan) {
		if bp.Param.Direction == InOut {
			stmts = append(stmts, jen.Id(bp.Dest).Op(":=").
				Qual(load.RuntimePkgPath, "NullFrom").Call(jen.Id(bp.Param.Name)))
		} else {
			stmts = append(stmts, jen.Var().Id(bp.Dest).Add(nullCode(bp.Param.Type.Elem)))
		}
	}
	if b.Source.Kind == SourceRawText {
		stmts = append(stmts, jen.Id("cmd").Op(":=").Id("string").Call(jen.Id(b.Source.RawParam)))
	} else {
		stmts = append(stmts, jen.Id("cmd").Op(":=").Lit(ProcedureText(b)))
	}
	if len(plan) > 0 {
		args := make([]jen.Code, len(plan))
		for i, bp := range plan {
			args[i] = argExpr(bp)
		}
		stmts = append(stmts, jen.Id("args").Op(":=").Index().Any().Values(args...))
	}

	var tail []jen.Code
	var err error
	switch {
	case class == nil:
		tail = execBody(u, b, plan)
	case class.Kind == KindScalar:
		tail = scalarBody(u, b, plan, class)
	case u.Strategy.Kind == StrategyDB:
		tail, err = rowMapBody(u, b, plan, class)
	case class.Kind == KindEntityCollection && b.Result.Elem.Kind == load.KindPointer:
		// Table accessors yield value slices; pointer-element collections
		// fall back to row mapping over the context's connection.
		tail, err = rowMapBody(u, b, plan, class)
	default:
		tail = tableBody(u, b, plan, class)
	}
	if err != nil {
		return nil, err
	}
	return append(stmts, tail...), nil
}

// argExpr renders one bound argument. Every argument is named; directional
// parameters bind through sql.Out against their destination local, and
// nullable inputs pass through the null guard.
func argExpr(bp *boundParam) jen.Code {
	named := func(value jen.Code) jen.Code {
		return jen.Qual(sqlPkgPath, "Named").Call(jen.Lit(bp.Param.External), value)
	}
	switch bp.Param.Direction {
	case Out:
		return named(jen.Qual(sqlPkgPath, "Out").Values(jen.Dict{
			jen.Id("Dest"): jen.Op("&").Id(bp.Dest),
		}))
	case InOut:
		return named(jen.Qual(sqlPkgPath, "Out").Values(jen.Dict{
			jen.Id("Dest"): jen.Op("&").Id(bp.Dest),
			jen.Id("In"):   jen.True(),
		}))
	default:
		if bp.Nullable {
			return named(jen.Qual(load.RuntimePkgPath, "NullIfNil").Call(jen.Id(bp.Param.Name)))
		}
		return named(jen.Id(bp.Param.Name))
	}
}

// connExpr renders the expression yielding the *sql.DB handle for the
// resolved strategy.
func connExpr(u *Unit) jen.Code {
	if u.Strategy.Kind == StrategyDB {
		return jen.Id(recv).Dot(u.Strategy.Field)
	}
	return jen.Id(recv).Dot(u.Strategy.Field).Dot("DB").Call()
}

// execArgs renders (ctx, cmd) or (ctx, cmd, args...) for the database/sql
// XxxContext calls.
func execArgs(plan []*boundParam) []jen.Code {
	out := []jen.Code{jen.Id("ctx"), jen.Id("cmd")}
	if len(plan) > 0 {
		out = append(out, jen.Id("args").Op("..."))
	}
	return out
}

// readBacks renders the post-execution copies from the destination locals
// into the caller's directional parameters, in declaration order.
func readBacks(plan []*boundParam) []jen.Code {
	var out []jen.Code
	for _, bp := range outParams(plan) {
		out = append(out, jen.Op("*").Id(bp.Param.Name).Op("=").Id(bp.Dest).Dot("V"))
	}
	return out
}

// execBody materializes nothing: the command runs for effect and only the
// directional parameters carry values back.
func execBody(u *Unit, b *Binding, plan []*boundParam) []jen.Code {
	stmts := []jen.Code{
		jen.If(
			jen.List(jen.Id("_"), jen.Err()).Op(":=").Add(connExpr(u)).Dot("ExecContext").Call(execArgs(plan)...),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Err())),
	}
	stmts = append(stmts, readBacks(plan)...)
	return append(stmts, jen.Return(jen.Nil()))
}

// scalarBody opens a dedicated connection, runs a single-row query and
// scans the first column into the declared scalar type. A nullable scalar
// scans through the null sentinel and converts back to a pointer.
func scalarBody(u *Unit, b *Binding, plan []*boundParam, class *Classification) []jen.Code {
	zero := zeroCode(b.Result)
	stmts := []jen.Code{
		jen.List(jen.Id("conn"), jen.Err()).Op(":=").Add(connExpr(u)).Dot("Conn").Call(jen.Id("ctx")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero, jen.Err())),
		jen.Defer().Id("conn").Dot("Close").Call(),
	}
	if class.Nullable {
		stmts = append(stmts, jen.Var().Id("ret").Add(nullCode(class.Under)))
	} else {
		stmts = append(stmts, jen.Var().Id("ret").Add(typeCode(b.Result)))
	}
	stmts = append(stmts, jen.If(
		jen.Err().Op(":=").Id("conn").Dot("QueryRowContext").Call(execArgs(plan)...).
			Dot("Scan").Call(jen.Op("&").Id("ret")),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(zero, jen.Err())))
	stmts = append(stmts, readBacks(plan)...)
	if class.Nullable {
		return append(stmts, jen.Return(jen.Qual(load.RuntimePkgPath, "NullPtr").Call(jen.Id("ret")), jen.Nil()))
	}
	return append(stmts, jen.Return(jen.Id("ret"), jen.Nil()))
}

// rowMapBody materializes entities by positional row mapping: one scan
// destination per exported field in declaration order, with nullable fields
// scanned through a null intermediate.
func rowMapBody(u *Unit, b *Binding, plan []*boundParam, class *Classification) ([]jen.Code, error) {
	ent := class.Under
	dests, fixups, err := scanPlan(u, b, ent)
	if err != nil {
		return nil, err
	}
	zero := zeroCode(b.Result)
	collection := class.Kind == KindEntityCollection
	ptrElem := collection && b.Result.Elem.Kind == load.KindPointer

	closeAndFail := jen.Block(
		jen.Id("rows").Dot("Close").Call(),
		jen.Return(zero, jen.Err()),
	)

	var rowStmts []jen.Code
	rowStmts = append(rowStmts, jen.Var().Id("e").Add(typeCode(ent)))
	for _, fx := range fixups {
		rowStmts = append(rowStmts, jen.Var().Id(fx.local).Add(nullCode(fx.elem)))
	}
	rowStmts = append(rowStmts, jen.If(
		jen.Err().Op(":=").Id("rows").Dot("Scan").Call(dests...),
		jen.Err().Op("!=").Nil(),
	).Add(closeAndFail))
	for _, fx := range fixups {
		rowStmts = append(rowStmts, jen.Id("e").Dot(fx.field).Op("=").
			Qual(load.RuntimePkgPath, "NullPtr").Call(jen.Id(fx.local)))
	}

	stmts := []jen.Code{
		jen.List(jen.Id("rows"), jen.Err()).Op(":=").Add(connExpr(u)).Dot("QueryContext").Call(execArgs(plan)...),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero, jen.Err())),
	}
	switch {
	case collection:
		elem := jen.Id("e")
		if ptrElem {
			elem = jen.Op("&").Id("e")
		}
		rowStmts = append(rowStmts, jen.Id("out").Op("=").Append(jen.Id("out"), elem))
		stmts = append(stmts,
			jen.Id("out").Op(":=").Make(typeCode(b.Result), jen.Lit(0)),
			jen.For(jen.Id("rows").Dot("Next").Call()).Block(rowStmts...),
		)
	case class.Nullable:
		rowStmts = append(rowStmts, jen.Id("out").Op("=").Op("&").Id("e"))
		stmts = append(stmts,
			jen.Var().Id("out").Op("*").Add(typeCode(ent)),
			jen.If(jen.Id("rows").Dot("Next").Call()).Block(rowStmts...),
		)
	default:
		rowStmts = append(rowStmts, jen.Id("out").Op("=").Id("e"))
		stmts = append(stmts,
			jen.Var().Id("out").Add(typeCode(ent)),
			jen.If(jen.Id("rows").Dot("Next").Call()).Block(rowStmts...),
		)
	}
	stmts = append(stmts,
		jen.If(
			jen.Err().Op(":=").Id("rows").Dot("Err").Call(),
			jen.Err().Op("!=").Nil(),
		).Add(closeAndFail),
		jen.If(
			jen.Err().Op(":=").Id("rows").Dot("Close").Call(),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(zero, jen.Err())),
	)
	stmts = append(stmts, readBacks(plan)...)
	return append(stmts, jen.Return(jen.Id("out"), jen.Nil())), nil
}

// nullFixup records one nullable entity field that scans through an
// intermediate local.
type nullFixup struct {
	local string
	field string
	elem  *load.TypeRef
}

// scanPlan builds the positional scan destinations for an entity's exported
// fields. Pointer fields over scalar types scan through a null intermediate
// and are copied back after the scan.
func scanPlan(u *Unit, b *Binding, ent *load.TypeRef) ([]jen.Code, []nullFixup, error) {
	var dests []jen.Code
	var fixups []nullFixup
	for i, fld := range ent.Fields {
		if !fld.Exported {
			continue
		}
		if fld.Embedded {
			return nil, nil, NewTypeError(u.Name, b.Name, "", ent.String(), "embedded fields are not supported by row mapping")
		}
		if fld.Type.Kind == load.KindPointer {
			if _, ok := scalarOf(fld.Type.Elem); ok {
				fx := nullFixup{local: fmt.Sprintf("c%d", i), field: fld.Name, elem: fld.Type.Elem}
				fixups = append(fixups, fx)
				dests = append(dests, jen.Op("&").Id(fx.local))
				continue
			}
		}
		dests = append(dests, jen.Op("&").Id("e").Dot(fld.Name))
	}
	if len(dests) == 0 {
		return nil, nil, NewTypeError(u.Name, b.Name, "", ent.String(), "entity has no mappable fields")
	}
	return dests, fixups, nil
}

// tableBody materializes entities through the context's entity-set
// accessor: the command text and bound arguments pass straight into a raw
// query on the matching table.
func tableBody(u *Unit, b *Binding, plan []*boundParam, class *Classification) []jen.Code {
	zero := zeroCode(b.Result)
	rawArgs := []jen.Code{jen.Id("cmd")}
	if len(plan) > 0 {
		rawArgs = append(rawArgs, jen.Id("args").Op("..."))
	}
	method := "All"
	if class.Kind == KindEntity {
		method = "First"
		if class.Nullable {
			method = "FirstPtr"
		}
	}
	accessor := u.Strategy.EntityAccessor(class.Under)
	stmts := []jen.Code{
		jen.List(jen.Id("res"), jen.Err()).Op(":=").
			Id(recv).Dot(u.Strategy.Field).Dot(accessor).
			Dot("Raw").Call(rawArgs...).
			Dot(method).Call(jen.Id("ctx")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(zero, jen.Err())),
	}
	stmts = append(stmts, readBacks(plan)...)
	return append(stmts, jen.Return(jen.Id("res"), jen.Nil()))
}
