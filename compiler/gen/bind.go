package gen

import (
	"fmt"

	"github.com/syssam/sqlproc/compiler/load"
)

// boundParam is the binder's plan for one bound parameter: the external
// name comes from the Param, the database type tag is resolved for
// directional parameters, and Dest names the sql.Null destination local
// that execution writes into.
type boundParam struct {
	Param    *Param
	Nullable bool
	DBType   DBType // resolved for Out and InOut only
	Dest     string // destination local for Out and InOut, "" otherwise
}

// planParams validates and plans the bound parameters of one binding. The
// plan preserves declaration order exactly; the binder never reorders. A
// directional parameter whose type has no scalar mapping is a hard failure
// of the declaration's generation.
func planParams(u *Unit, b *Binding) ([]*boundParam, error) {
	bound := b.Bound()
	plan := make([]*boundParam, 0, len(bound))
	dests := 0
	for _, p := range bound {
		bp := &boundParam{
			Param:    p,
			Nullable: p.Type.Kind == load.KindPointer,
		}
		if p.Direction == Out || p.Direction == InOut {
			db, err := ScalarDBType(p.Type)
			if err != nil {
				return nil, NewTypeError(u.Name, b.Name, p.Name, p.Type.String(),
					"no database type mapping for "+p.Direction.String()+" parameter")
			}
			bp.DBType = db
			bp.Dest = fmt.Sprintf("v%d", dests)
			dests++
		}
		plan = append(plan, bp)
	}
	return plan, nil
}

// outParams returns the directional entries of a plan, in order.
func outParams(plan []*boundParam) []*boundParam {
	var out []*boundParam
	for _, bp := range plan {
		if bp.Dest != "" {
			out = append(out, bp)
		}
	}
	return out
}
