// Package mir implements: the SSA-form machine intermediate
// representation lowered from a resolved, typed ast.Unit, plus the builder,
// printer, and validator around it. Every owned entity (type, instruction,
// block, function, slot, argument, module-scope data) is addressed by a
// small integer ID into an arena, matching the ID/arena idiom internal/ast
// and internal/types already use, rather than a pointer-graph.
package mir

// TypeID addresses an interned Type within a Context. Distinct from
// types.TypeID: MIR's type system is its own, simpler mirror (
// §4.7) with no enum/template/deferred variants.
type TypeID int32

// NoTypeID marks the absence of an MIR type.
const NoTypeID TypeID = -1

// InstID addresses an Inst within a Function's instruction arena.
type InstID int32

// NoInstID marks the absence of an instruction.
const NoInstID InstID = -1

// BlockID addresses a Block within a Function's block arena.
type BlockID int32

// NoBlockID marks the absence of a block.
const NoBlockID BlockID = -1

// ArgID addresses an Argument within a Function's argument list.
type ArgID int32

// NoArgID marks the absence of an argument.
const NoArgID ArgID = -1

// FuncID addresses a Function within a Segment.
type FuncID int32

// NoFuncID marks the absence of a function.
const NoFuncID FuncID = -1

// DataID addresses a module-scope readonly Data value within a Segment.
type DataID int32

// NoDataID marks the absence of a data value.
const NoDataID DataID = -1
