package netlist

import "strings"

// IsPublic reports whether name is a user-visible identifier. Builtin cell
// types and auto-generated names start with '$'.
func IsPublic(name string) bool {
	return !strings.HasPrefix(name, "$")
}

var coarseFFTypes = map[string]bool{
	"$sr":       true,
	"$ff":       true,
	"$dff":      true,
	"$dffe":     true,
	"$dffsr":    true,
	"$dffsre":   true,
	"$adff":     true,
	"$adffe":    true,
	"$aldff":    true,
	"$aldffe":   true,
	"$sdff":     true,
	"$sdffe":    true,
	"$sdffce":   true,
	"$dlatch":   true,
	"$adlatch":  true,
	"$dlatchsr": true,
}

// fine-grained families, matched on the prefix up to the polarity suffix
var fineFFPrefixes = []string{
	"$_SR_",
	"$_FF_",
	"$_DFF_",
	"$_DFFE_",
	"$_DFFSR_",
	"$_DFFSRE_",
	"$_ALDFF_",
	"$_ALDFFE_",
	"$_SDFF_",
	"$_SDFFE_",
	"$_SDFFCE_",
	"$_DLATCH_",
	"$_DLATCHSR_",
}

// IsBuiltinFF reports whether typ is a builtin flip-flop or latch type.
func IsBuiltinFF(typ string) bool {
	if coarseFFTypes[typ] {
		return true
	}
	for _, p := range fineFFPrefixes {
		if strings.HasPrefix(typ, p) {
			return true
		}
	}
	return false
}

// builtinOutputs lists the output ports of builtin cells. Every other port
// of a builtin cell is an input.
var builtinOutputs = map[string]bool{
	"Q":       true,
	"Y":       true,
	"X":       true,
	"CO":      true,
	"RD_DATA": true,
}

// Combining gate types.
const (
	TypeXor = "$xor"
	TypeAnd = "$and"
	TypeOr  = "$or"
)

// AddXor adds a bitwise XOR cell driving y from a and b.
func (m *Module) AddXor(name string, a, b, y SigSpec) *Cell {
	return m.addBinary(name, TypeXor, a, b, y)
}

// AddAnd adds a bitwise AND cell driving y from a and b.
func (m *Module) AddAnd(name string, a, b, y SigSpec) *Cell {
	return m.addBinary(name, TypeAnd, a, b, y)
}

// AddOr adds a bitwise OR cell driving y from a and b.
func (m *Module) AddOr(name string, a, b, y SigSpec) *Cell {
	return m.addBinary(name, TypeOr, a, b, y)
}

func (m *Module) addBinary(name, typ string, a, b, y SigSpec) *Cell {
	c := m.AddCell(name, typ)
	c.Parameters.Set("A_SIGNED", ConstInt(0))
	c.Parameters.Set("B_SIGNED", ConstInt(0))
	c.Parameters.Set("A_WIDTH", ConstInt(len(a)))
	c.Parameters.Set("B_WIDTH", ConstInt(len(b)))
	c.Parameters.Set("Y_WIDTH", ConstInt(len(y)))
	c.SetPort("A", a)
	c.SetPort("B", b)
	c.SetPort("Y", y)
	return c
}

// PortDirection returns "input", "output" or "inout" for port name of c.
// Module instances take the direction from the instantiated module when the
// design defines it.
func (c *Cell) PortDirection(name string) string {
	if d := c.module.design; d != nil {
		if target := d.Module(c.Type); target != nil {
			if w := target.Wire(name); w != nil && w.IsPort() {
				return wireDirection(w)
			}
		}
	}
	if dir, ok := c.portDirs[name]; ok {
		return dir
	}
	if !IsPublic(c.Type) && builtinOutputs[name] {
		return "output"
	}
	return "input"
}

func wireDirection(w *Wire) string {
	switch {
	case w.PortInput && w.PortOutput:
		return "inout"
	case w.PortOutput:
		return "output"
	default:
		return "input"
	}
}
