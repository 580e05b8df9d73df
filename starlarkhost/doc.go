// Package starlarkhost implements hostobj.Host over go.starlark.net values.
//
// A Host is bound to one starlark.Thread, the execution context of the
// interpreter. Objects map as follows:
//
//	Host kind   Starlark type
//	─────────────────────────────
//	none        NoneType
//	bool        bool
//	int         int (arbitrary precision)
//	float       float
//	text        string
//	sequence    list
//	tuple       tuple
//	mapping     dict
//	record      struct (starlarkstruct), decode only
//
// Lists and dicts are frozen when their builder finishes, so encoded values
// are immutable to scripts. Dict keys are hash-checked before insertion and
// unhashable keys are reported with hostobj.ErrUnhashable. A key equal to one
// already present (1 and 1.0 are equal in Starlark) is reported with
// hostobj.ErrDuplicateKey instead of overwriting the entry. Size limits from
// Config are reported with hostobj.ErrLimitExceeded.
//
// Eval and ExecFile run code on the Host's thread with the struct builtin
// predeclared:
//
//	h := starlarkhost.New(&starlark.Thread{Name: "main"})
//	v, err := h.Eval(`struct(name="John", age=30)`)
//	p, err := transcoder.DecodeAs[Person](transcoder.NewDecoder(), h, v)
package starlarkhost
