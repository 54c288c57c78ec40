// Package sqlproc declares the marker surface recognized by the sqlproc
// code generator.
//
// A top-level interface annotated with a //sqlproc:queries directive is a
// generation target. Each method carrying a //sqlproc:proc or //sqlproc:query
// directive gets a synthesized implementation that executes a database
// command and materializes its result. See compiler/load for the directive
// grammar and compiler/gen for the synthesis engine.
package sqlproc

// Raw marks a parameter as the raw-command parameter: its runtime value
// supplies the literal command text, bypassing procedure-name-based text
// construction. A method using the //sqlproc:query form must declare exactly
// one Raw parameter.
type Raw string

// String returns the command text carried by the parameter.
func (r Raw) String() string { return string(r) }
