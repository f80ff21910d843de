package mir

// Data is a module-scope, readonly constant placed outside any function
// ("Constants": a string literal's backing array).
type Data struct {
	ID DataID
	Name string
	Type TypeID // array(i8, len+1) for a string literal
	Bytes []byte
	Linkage Linkage
	Uses []InstID
}

// Arch, OS, and ABI enumerate the target triple components
// requires on a Segment's printed output header.
type Arch string
type OS string
type ABI string

const (
	ArchX86_64 Arch = "x86_64"
	OSLinux OS = "linux"
	ABISystemV ABI = "system_v"
)

// Segment is the MIR module: every interned type, module-scope data,
// and function produced by one Lower call. Lower puts every translation
// unit it is given into the same Segment; there is no separate Segment
// per unit.
type Segment struct {
	Arch Arch
	OS OS
	ABI ABI

	Types *Context

	// Structs lists every struct type surfaced by this segment's
	// functions/data, in first-reference order, for the printer's
	// "struct definitions" section.
	Structs []TypeID

	Data []Data
	Funcs []*Function

	funcIndex map[string]FuncID
}

// NewSegment constructs an empty Segment targeting x86_64 linux system_v,
// the only triple names.
func NewSegment() *Segment {
	return &Segment{
		Arch: ArchX86_64, OS: OSLinux, ABI: ABISystemV,
		Types: NewContext(),
		funcIndex: make(map[string]FuncID),
	}
}

// Func returns the Function addressed by id.
func (s *Segment) Func(id FuncID) *Function {
	if id == NoFuncID || int(id) >= len(s.Funcs) {
		return nil
	}
	return s.Funcs[id]
}

// FuncByName returns the FuncID registered under name, if any.
func (s *Segment) FuncByName(name string) (FuncID, bool) {
	id, ok:= s.funcIndex[name]
	return id, ok
}

// AddFunc registers fn (whose ID must already be set to len(s.Funcs))
// under its Name.
func (s *Segment) AddFunc(fn *Function) {
	s.Funcs = append(s.Funcs, fn)
	s.funcIndex[fn.Name] = fn.ID
}

// AddStruct records structType as surfaced by this segment, if it is
// not already recorded (first-reference order, for printing).
func (s *Segment) AddStruct(structType TypeID) {
	for _, id:= range s.Structs {
		if id == structType {
			return
		}
	}
	s.Structs = append(s.Structs, structType)
}

// AddData appends d to the segment's module-scope data, assigning its ID.
func (s *Segment) AddData(d Data) DataID {
	id:= DataID(len(s.Data))
	d.ID = id
	s.Data = append(s.Data, d)
	return id
}
