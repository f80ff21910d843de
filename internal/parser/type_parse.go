package parser

import (
	"strconv"

	"github.com/nwmarino/meddle/internal/token"
	"github.com/nwmarino/meddle/internal/types"
)

var primitiveNames = map[string]bool{
	"void": true, "bool": true, "char": true,
	"i8": true, "i16": true, "i32": true, "i64": true,
	"u8": true, "u16": true, "u32": true, "u64": true,
	"f32": true, "f64": true,
}

// parseType implements `type::= ident ('::' ident)? type-args? ('*' | '[' int ']')*`.
// A plain base name is always resolved through the unit's TypeContext
// primitives resolve immediately, everything else becomes a Deferred
// type that internal/types.Context.Sanitate reconciles once every file
// has been parsed and every struct/enum decl registered.
func (p *Parser) parseType() (types.TypeID, error) {
	nameTok, err:= p.expect(token.Ident)
	if err != nil {
		return types.NoTypeID, err
	}
	name:= nameTok.Text
	if _, ok:= p.accept(token.ColonColon); ok {
		memberTok, err:= p.expect(token.Ident)
		if err != nil {
			return types.NoTypeID, err
		}
		name = name + "::" + memberTok.Text
	}

	var args []types.TypeID
	if p.check(token.Lt) {
		args, err = p.parseTypeArgs()
		if err != nil {
			return types.NoTypeID, err
		}
	}

	base:= p.resolveBaseType(name, args, nameTok)

	for {
		switch {
		case p.check(token.Star):
			p.advance()
			base = p.unit.Types.MakePointer(base)
		case p.check(token.LBracket):
			p.advance()
			sizeTok, err:= p.expect(token.IntLit)
			if err != nil {
				return types.NoTypeID, err
			}
			if _, err:= p.expect(token.RBracket); err != nil {
				return types.NoTypeID, err
			}
			size, convErr:= strconv.ParseUint(sizeTok.Text, 10, 64)
			if convErr != nil {
				return types.NoTypeID, p.errorf("invalid array size %q", sizeTok.Text)
			}
			base = p.unit.Types.MakeArray(base, size)
		default:
			return base, nil
		}
	}
}

// parseTypeArgs parses `'<' type (',' type)* '>'`.
func (p *Parser) parseTypeArgs() ([]types.TypeID, error) {
	if _, err:= p.expect(token.Lt); err != nil {
		return nil, err
	}
	var args []types.TypeID
	for {
		arg, err:= p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok:= p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err:= p.expect(token.Gt); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) resolveBaseType(name string, args []types.TypeID, tok token.Token) types.TypeID {
	b := p.unit.Types.Builtins()
	if len(args) == 0 {
		switch name {
		case "void":
			return b.Void
		case "bool":
			return b.Bool
		case "char":
			return b.Char
		case "i8":
			return b.I8
		case "i16":
			return b.I16
		case "i32":
			return b.I32
		case "i64":
			return b.I64
		case "u8":
			return b.U8
		case "u16":
			return b.U16
		case "u32":
			return b.U32
		case "u64":
			return b.U64
		case "f32":
			return b.F32
		case "f64":
			return b.F64
		}
		return p.unit.Types.Defer(name, tok.Loc)
	}
	return p.unit.Types.MakeTemplateStruct(name, args)
}

// parseTemplateParamNames parses `'<' ident (',' ident)* '>'` for a
// template declaration header, returning the bare parameter names.
func (p *Parser) parseTemplateParamNames() ([]string, error) {
	if _, err:= p.expect(token.Lt); err != nil {
		return nil, err
	}
	var names []string
	for {
		nameTok, err:= p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok.Text)
		if _, ok:= p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err:= p.expect(token.Gt); err != nil {
		return nil, err
	}
	return names, nil
}
