package netlist

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// State is the value of a constant signal bit.
type State byte

const (
	S0 State = '0'
	S1 State = '1'
	Sx State = 'x'
	Sz State = 'z'
)

// SigBit is a single bit of a signal: either bit Offset of Wire, or a
// constant when Wire is nil.
type SigBit struct {
	Wire   *Wire
	Offset int
	Const  State
}

// IsConst reports whether b is a constant bit.
func (b SigBit) IsConst() bool { return b.Wire == nil }

func (b SigBit) String() string {
	if b.Wire == nil {
		return string(b.Const)
	}
	if b.Wire.Width == 1 {
		return b.Wire.Name
	}
	return fmt.Sprintf("%s[%d]", b.Wire.Name, b.Offset)
}

// SigSpec is an ordered list of bits, least significant bit first.
type SigSpec []SigBit

// SigOf returns all bits of w.
func SigOf(w *Wire) SigSpec {
	s := make(SigSpec, w.Width)
	for i := range s {
		s[i] = SigBit{Wire: w, Offset: i}
	}
	return s
}

// Len returns the width of s in bits.
func (s SigSpec) Len() int { return len(s) }

func (s SigSpec) String() string {
	parts := make([]string, len(s))
	for i := range s {
		parts[len(s)-1-i] = s[i].String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Wire is a named bit vector owned by one module.
type Wire struct {
	Name       string
	Width      int
	PortID     int
	PortInput  bool
	PortOutput bool
	Attributes *Attributes

	module *Module
}

// Module returns the module declaring w.
func (w *Wire) Module() *Module { return w.module }

// IsPort reports whether w is a declared port of its module.
func (w *Wire) IsPort() bool { return w.PortInput || w.PortOutput }

// Cell is an instance of a builtin primitive or of another module.
type Cell struct {
	Name       string
	Type       string
	Parameters *Attributes
	Attributes *Attributes

	portNames []string
	ports     map[string]SigSpec
	// directions carried over from an input netlist for cell types this
	// design does not define.
	portDirs map[string]string
	module   *Module
}

// Module returns the module containing c.
func (c *Cell) Module() *Module { return c.module }

// HasPort reports whether c has a connection for port name.
func (c *Cell) HasPort(name string) bool {
	_, ok := c.ports[name]
	return ok
}

// Port returns the signal connected to port name, or nil.
func (c *Cell) Port(name string) SigSpec {
	return c.ports[name]
}

// SetPort binds port name to sig, replacing any previous binding.
func (c *Cell) SetPort(name string, sig SigSpec) {
	if _, ok := c.ports[name]; !ok {
		c.portNames = append(c.portNames, name)
	}
	c.ports[name] = sig
}

// Ports returns the connected port names in binding order.
func (c *Cell) Ports() []string {
	out := make([]string, len(c.portNames))
	copy(out, c.portNames)
	return out
}

// SetPortDirection records the direction of a port for cell types that are
// neither builtin nor defined in the design.
func (c *Cell) SetPortDirection(name, dir string) {
	if c.portDirs == nil {
		c.portDirs = make(map[string]string)
	}
	c.portDirs[name] = dir
}

// Connection drives Lhs from Rhs. Both sides have the same width.
type Connection struct {
	Lhs SigSpec
	Rhs SigSpec
}

// Module is a named container of wires, cells and connections.
type Module struct {
	Name       string
	Attributes *Attributes

	wires     []*Wire
	wireIndex map[string]*Wire
	cells     []*Cell
	cellIndex map[string]*Cell
	conns     []Connection
	design    *Design
}

// Design returns the design owning m.
func (m *Module) Design() *Design { return m.design }

// IsTop reports whether m carries a non-zero "top" attribute.
func (m *Module) IsTop() bool { return m.Attributes.Bool(AttrTop) }

// Wire returns the wire called name, or nil.
func (m *Module) Wire(name string) *Wire { return m.wireIndex[name] }

// Cell returns the cell called name, or nil.
func (m *Module) Cell(name string) *Cell { return m.cellIndex[name] }

// Wires returns a snapshot of the module's wires in declaration order.
func (m *Module) Wires() []*Wire {
	out := make([]*Wire, len(m.wires))
	copy(out, m.wires)
	return out
}

// Cells returns a snapshot of the module's cells in creation order. Cells
// added while iterating over the snapshot are not part of it.
func (m *Module) Cells() []*Cell {
	out := make([]*Cell, len(m.cells))
	copy(out, m.cells)
	return out
}

// Connections returns the module's connections.
func (m *Module) Connections() []Connection {
	out := make([]Connection, len(m.conns))
	copy(out, m.conns)
	return out
}

// Ports returns the module's port wires ordered by PortID.
func (m *Module) Ports() []*Wire {
	var ports []*Wire
	for _, w := range m.wires {
		if w.IsPort() {
			ports = append(ports, w)
		}
	}
	sortWiresByPortID(ports)
	return ports
}

// AddWire creates a new wire. It panics with a *NameConflictError if the
// module already has a wire of that name.
func (m *Module) AddWire(name string, width int) *Wire {
	if _, ok := m.wireIndex[name]; ok {
		panic(&NameConflictError{Kind: "wire", Module: m.Name, Name: name})
	}
	w := &Wire{Name: name, Width: width, Attributes: NewAttributes(), module: m}
	m.wires = append(m.wires, w)
	m.wireIndex[name] = w
	return w
}

// AddCell creates a new cell without any port bindings. It panics with a
// *NameConflictError if the module already has a cell of that name.
func (m *Module) AddCell(name, typ string) *Cell {
	if _, ok := m.cellIndex[name]; ok {
		panic(&NameConflictError{Kind: "cell", Module: m.Name, Name: name})
	}
	c := &Cell{
		Name:       name,
		Type:       typ,
		Parameters: NewAttributes(),
		Attributes: NewAttributes(),
		ports:      make(map[string]SigSpec),
		module:     m,
	}
	m.cells = append(m.cells, c)
	m.cellIndex[name] = c
	return c
}

// Connect drives lhs from rhs. It panics if the widths differ.
func (m *Module) Connect(lhs, rhs SigSpec) {
	if len(lhs) != len(rhs) {
		panic(fmt.Sprintf("netlist: connect width mismatch in %s: %d != %d", m.Name, len(lhs), len(rhs)))
	}
	m.conns = append(m.conns, Connection{Lhs: lhs, Rhs: rhs})
}

// FixupPorts assigns port ids. Ports that already have an id keep it; new
// ports are numbered after them in declaration order. Wires that stopped
// being ports lose their id.
func (m *Module) FixupPorts() {
	next := 0
	for _, w := range m.wires {
		if !w.IsPort() {
			w.PortID = 0
			continue
		}
		if w.PortID > next {
			next = w.PortID
		}
	}
	ports := m.Ports()
	for _, w := range ports {
		if w.PortID == 0 {
			next++
			w.PortID = next
		}
	}
	// renumber densely, preserving order
	for i, w := range m.Ports() {
		w.PortID = i + 1
	}
}

// Design is an ordered collection of modules.
type Design struct {
	modules []*Module
	index   map[string]*Module
	autoidx int
}

// NewDesign returns an empty design.
func NewDesign() *Design {
	return &Design{index: make(map[string]*Module), autoidx: 1}
}

// Modules returns a snapshot of the design's modules in insertion order.
func (d *Design) Modules() []*Module {
	out := make([]*Module, len(d.modules))
	copy(out, d.modules)
	return out
}

// Module returns the module called name, or nil.
func (d *Design) Module(name string) *Module { return d.index[name] }

// AddModule creates a new empty module. It panics with a *NameConflictError
// if the design already has a module of that name.
func (d *Design) AddModule(name string) *Module {
	if _, ok := d.index[name]; ok {
		panic(&NameConflictError{Kind: "module", Name: name})
	}
	m := &Module{
		Name:       name,
		Attributes: NewAttributes(),
		wireIndex:  make(map[string]*Wire),
		cellIndex:  make(map[string]*Cell),
		design:     d,
	}
	d.modules = append(d.modules, m)
	d.index[name] = m
	return m
}

// NewID returns an internal name unused by wires and cells of m. Names are
// drawn from a design-wide counter so they are deterministic for a given
// sequence of calls.
func (d *Design) NewID(m *Module) string {
	for {
		name := fmt.Sprintf("$auto$addfi$%d", d.autoidx)
		d.autoidx++
		if m.Wire(name) == nil && m.Cell(name) == nil {
			return name
		}
	}
}

// Top returns the first module tagged top and the number of such modules.
// Yosys addFi settles on the last tagged module instead; the first is used
// here so that the choice does not move when modules are appended.
func (d *Design) Top() (*Module, int) {
	var top *Module
	n := 0
	for _, m := range d.modules {
		if m.IsTop() {
			if top == nil {
				top = m
			}
			n++
		}
	}
	return top, n
}

// SetTop tags the module called name as top and clears the tag on every
// other module.
func (d *Design) SetTop(name string) error {
	target := d.Module(name)
	if target == nil {
		return errors.Errorf("module %q not found", name)
	}
	for _, m := range d.modules {
		m.Attributes.Delete(AttrTop)
	}
	target.Attributes.Set(AttrTop, ConstInt(1))
	return nil
}

// NameConflictError is raised when an object is created under a name that
// is already taken in its scope.
type NameConflictError struct {
	Kind   string
	Module string
	Name   string
}

func (e *NameConflictError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %q already exists in module %q", e.Kind, e.Name, e.Module)
}

func sortWiresByPortID(ws []*Wire) {
	// insertion sort keeps declaration order among equal ids
	for i := 1; i < len(ws); i++ {
		for j := i; j > 0 && portKey(ws[j]) < portKey(ws[j-1]); j-- {
			ws[j], ws[j-1] = ws[j-1], ws[j]
		}
	}
}

// portKey sorts unnumbered ports after numbered ones.
func portKey(w *Wire) int {
	if w.PortID == 0 {
		return int(^uint(0) >> 1)
	}
	return w.PortID
}
