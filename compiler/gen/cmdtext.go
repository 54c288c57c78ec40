package gen

import "strings"

// outputMarker suffixes every Out or InOut parameter reference in procedure
// command text.
const outputMarker = " OUTPUT"

// ProcedureText assembles the command text for a procedure-sourced binding:
// the bare procedure name when there are no bound parameters, otherwise the
// name followed by the external parameter references in declaration order,
// with the OUTPUT marker on every directional reference. Internal
// identifiers never appear in command text.
func ProcedureText(b *Binding) string {
	bound := b.Bound()
	if len(bound) == 0 {
		return b.Source.Proc
	}
	var sb strings.Builder
	sb.WriteString(b.Source.Proc)
	sb.WriteString(" ")
	for i, p := range bound {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("@")
		sb.WriteString(p.External)
		if p.Direction == Out || p.Direction == InOut {
			sb.WriteString(outputMarker)
		}
	}
	return sb.String()
}
