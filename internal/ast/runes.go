package ast

// Runes is the bitset of declaration-level attributes written as `$name`
// or `$[a, b]` before a declaration.
type Runes uint8

const (
	// RuneAssociated marks a struct-scoped function with no implicit receiver.
	RuneAssociated Runes = 1 << iota
	// RuneNoMangle keeps the declared name as-is in MIR output.
	RuneNoMangle
	// RunePublic exports the declaration for use by other units.
	RunePublic
)

// Has reports whether bit is set.
func (r Runes) Has(bit Runes) bool { return r&bit != 0 }

// runeNames maps recognised rune spellings to their bit. Unknown runes
// are not in this table; the parser warns and ignores them.
var runeNames = map[string]Runes{
	"associated": RuneAssociated,
	"no_mangle": RuneNoMangle,
	"public": RunePublic,
}

// LookupRune resolves a rune's source spelling to its bit.
func LookupRune(name string) (Runes, bool) {
	r, ok:= runeNames[name]
	return r, ok
}
