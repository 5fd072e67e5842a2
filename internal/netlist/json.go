package netlist

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Creator is written into the "creator" field of emitted netlists.
const Creator = "addfi"

// ReadJSON reads a design in the Yosys write_json format. Module, port,
// wire and cell order is preserved.
func ReadJSON(data []byte) (*Design, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing netlist JSON")
	}
	mods := root.GetObject("modules")
	if mods == nil {
		return nil, errors.New(`netlist JSON has no "modules" object`)
	}

	d := NewDesign()
	var readErr error
	mods.Visit(func(key []byte, v *fastjson.Value) {
		if readErr != nil {
			return
		}
		name := string(key)
		if d.Module(name) != nil {
			readErr = errors.Errorf("duplicate module %q", name)
			return
		}
		if err := readModule(d.AddModule(name), v); err != nil {
			readErr = errors.Wrapf(err, "module %s", name)
		}
	})
	if readErr != nil {
		return nil, readErr
	}
	return d, nil
}

type moduleReader struct {
	m    *Module
	nets map[int]SigBit
}

func readModule(m *Module, v *fastjson.Value) error {
	if err := readAttributes(m.Attributes, v.GetObject("attributes")); err != nil {
		return errors.Wrap(err, "attributes")
	}
	r := &moduleReader{m: m, nets: make(map[int]SigBit)}

	var err error
	portID := 0
	if ports := v.GetObject("ports"); ports != nil {
		ports.Visit(func(key []byte, pv *fastjson.Value) {
			if err != nil {
				return
			}
			name := string(key)
			if m.Wire(name) != nil {
				err = errors.Errorf("duplicate port %s", name)
				return
			}
			bits := pv.GetArray("bits")
			w := m.AddWire(name, len(bits))
			switch dir := string(pv.GetStringBytes("direction")); dir {
			case "input":
				w.PortInput = true
			case "output":
				w.PortOutput = true
			case "inout":
				w.PortInput, w.PortOutput = true, true
			default:
				err = errors.Errorf("port %s: invalid direction %q", name, dir)
				return
			}
			portID++
			w.PortID = portID
			if bindErr := r.bind(w, bits); bindErr != nil {
				err = errors.Wrapf(bindErr, "port %s", name)
			}
		})
	}
	if err != nil {
		return err
	}

	var listed []*Wire
	if nets := v.GetObject("netnames"); nets != nil {
		nets.Visit(func(key []byte, nv *fastjson.Value) {
			if err != nil {
				return
			}
			name := string(key)
			bits := nv.GetArray("bits")
			w := m.Wire(name)
			if w != nil {
				listed = append(listed, w)
			}
			if w == nil {
				w = m.AddWire(name, len(bits))
				listed = append(listed, w)
				if bindErr := r.bind(w, bits); bindErr != nil {
					err = errors.Wrapf(bindErr, "netname %s", name)
					return
				}
			} else if w.Width != len(bits) {
				err = errors.Errorf("netname %s: width %d does not match port width %d", name, len(bits), w.Width)
				return
			}
			if attrErr := readAttributes(w.Attributes, nv.GetObject("attributes")); attrErr != nil {
				err = errors.Wrapf(attrErr, "netname %s", name)
			}
		})
	}
	if err != nil {
		return err
	}
	m.reorderWires(listed)

	if cells := v.GetObject("cells"); cells != nil {
		cells.Visit(func(key []byte, cv *fastjson.Value) {
			if err != nil {
				return
			}
			if cellErr := r.readCell(string(key), cv); cellErr != nil {
				err = errors.Wrapf(cellErr, "cell %s", key)
			}
		})
	}
	return err
}

// reorderWires puts the listed wires first, in list order, so that a
// written design reads back with the wire order it was written with.
func (m *Module) reorderWires(listed []*Wire) {
	seen := make(map[*Wire]bool, len(listed))
	order := make([]*Wire, 0, len(m.wires))
	for _, w := range listed {
		if !seen[w] {
			seen[w] = true
			order = append(order, w)
		}
	}
	for _, w := range m.wires {
		if !seen[w] {
			order = append(order, w)
		}
	}
	m.wires = order
}

func (r *moduleReader) readCell(name string, v *fastjson.Value) error {
	if r.m.Cell(name) != nil {
		return errors.New("duplicate cell")
	}
	typ := string(v.GetStringBytes("type"))
	if typ == "" {
		return errors.New("missing type")
	}
	c := r.m.AddCell(name, typ)
	if err := readAttributes(c.Parameters, v.GetObject("parameters")); err != nil {
		return errors.Wrap(err, "parameters")
	}
	if err := readAttributes(c.Attributes, v.GetObject("attributes")); err != nil {
		return errors.Wrap(err, "attributes")
	}
	if dirs := v.GetObject("port_directions"); dirs != nil {
		dirs.Visit(func(key []byte, dv *fastjson.Value) {
			c.SetPortDirection(string(key), string(dv.GetStringBytes()))
		})
	}

	var err error
	if conns := v.GetObject("connections"); conns != nil {
		conns.Visit(func(key []byte, sv *fastjson.Value) {
			if err != nil {
				return
			}
			sig, sigErr := r.sig(sv.GetArray())
			if sigErr != nil {
				err = errors.Wrapf(sigErr, "port %s", key)
				return
			}
			c.SetPort(string(key), sig)
		})
	}
	return err
}

// bind registers the bits of w. A net id already claimed by another wire
// makes w an alias of that wire; constants tie w to the constant.
func (r *moduleReader) bind(w *Wire, bits []*fastjson.Value) error {
	var lhs, rhs SigSpec
	for i, bv := range bits {
		own := SigBit{Wire: w, Offset: i}
		b, id, err := decodeBit(bv)
		if err != nil {
			return errors.Wrapf(err, "bit %d", i)
		}
		if id < 0 {
			lhs, rhs = append(lhs, own), append(rhs, b)
			continue
		}
		if canon, ok := r.nets[id]; ok {
			lhs, rhs = append(lhs, own), append(rhs, canon)
			continue
		}
		r.nets[id] = own
	}
	if len(lhs) > 0 {
		r.m.Connect(lhs, rhs)
	}
	return nil
}

func (r *moduleReader) sig(bits []*fastjson.Value) (SigSpec, error) {
	out := make(SigSpec, len(bits))
	for i, bv := range bits {
		b, id, err := decodeBit(bv)
		if err != nil {
			return nil, errors.Wrapf(err, "bit %d", i)
		}
		if id < 0 {
			out[i] = b
			continue
		}
		canon, ok := r.nets[id]
		if !ok {
			// a net that no netname covers
			name := "$auto$json$" + strconv.Itoa(id)
			if r.m.Wire(name) != nil {
				return nil, errors.Errorf("net %d collides with wire %s", id, name)
			}
			w := r.m.AddWire(name, 1)
			canon = SigBit{Wire: w}
			r.nets[id] = canon
		}
		out[i] = canon
	}
	return out, nil
}

// decodeBit returns either a constant bit with id -1, or a net id.
func decodeBit(v *fastjson.Value) (SigBit, int, error) {
	switch v.Type() {
	case fastjson.TypeNumber:
		id, err := v.Int()
		if err != nil {
			return SigBit{}, 0, err
		}
		if id < 0 {
			return SigBit{}, 0, errors.Errorf("negative net id %d", id)
		}
		return SigBit{}, id, nil
	case fastjson.TypeString:
		s := string(v.GetStringBytes())
		if len(s) != 1 || !isBinary(s) {
			return SigBit{}, 0, errors.Errorf("invalid constant bit %q", s)
		}
		return SigBit{Const: State(s[0])}, -1, nil
	default:
		return SigBit{}, 0, errors.Errorf("invalid bit of type %s", v.Type())
	}
}

func readAttributes(a *Attributes, obj *fastjson.Object) error {
	if obj == nil {
		return nil
	}
	var err error
	obj.Visit(func(key []byte, v *fastjson.Value) {
		if err != nil {
			return
		}
		switch v.Type() {
		case fastjson.TypeString:
			a.Set(string(key), string(v.GetStringBytes()))
		case fastjson.TypeNumber:
			n, intErr := v.Int()
			if intErr != nil {
				err = errors.Wrapf(intErr, "attribute %s", key)
				return
			}
			a.Set(string(key), ConstInt(n))
		default:
			a.Set(string(key), v.String())
		}
	})
	return err
}

// WriteJSON encodes d in the Yosys write_json format.
func WriteJSON(d *Design) ([]byte, error) {
	var a fastjson.Arena
	root := a.NewObject()
	root.Set("creator", a.NewString(Creator))
	mods := a.NewObject()
	for _, m := range d.modules {
		mods.Set(m.Name, writeModule(&a, m))
	}
	root.Set("modules", mods)
	out := root.MarshalTo(nil)
	return append(out, '\n'), nil
}

type moduleWriter struct {
	a    *fastjson.Arena
	sm   *SigMap
	ids  map[SigBit]int
	next int
}

func writeModule(a *fastjson.Arena, m *Module) *fastjson.Value {
	mw := &moduleWriter{a: a, sm: NewSigMap(m), ids: make(map[SigBit]int), next: 2}

	// number nets in port order first, so port bits get the lowest ids
	ports := m.Ports()
	for _, w := range ports {
		mw.bits(SigOf(w))
	}

	v := a.NewObject()
	v.Set("attributes", writeAttributes(a, m.Attributes))

	pv := a.NewObject()
	for _, w := range ports {
		p := a.NewObject()
		p.Set("direction", a.NewString(wireDirection(w)))
		p.Set("bits", mw.bits(SigOf(w)))
		pv.Set(w.Name, p)
	}
	v.Set("ports", pv)

	cv := a.NewObject()
	for _, c := range m.cells {
		cell := a.NewObject()
		cell.Set("hide_name", hideName(a, c.Name))
		cell.Set("type", a.NewString(c.Type))
		cell.Set("parameters", writeAttributes(a, c.Parameters))
		cell.Set("attributes", writeAttributes(a, c.Attributes))
		dirs := a.NewObject()
		conns := a.NewObject()
		for _, port := range c.portNames {
			dirs.Set(port, a.NewString(c.PortDirection(port)))
			conns.Set(port, mw.bits(c.ports[port]))
		}
		cell.Set("port_directions", dirs)
		cell.Set("connections", conns)
		cv.Set(c.Name, cell)
	}

	nv := a.NewObject()
	for _, w := range m.wires {
		net := a.NewObject()
		net.Set("hide_name", hideName(a, w.Name))
		net.Set("bits", mw.bits(SigOf(w)))
		net.Set("attributes", writeAttributes(a, w.Attributes))
		nv.Set(w.Name, net)
	}

	v.Set("cells", cv)
	v.Set("netnames", nv)
	return v
}

func (mw *moduleWriter) bits(s SigSpec) *fastjson.Value {
	arr := mw.a.NewArray()
	for i, b := range s {
		rep := mw.sm.Bit(b)
		if rep.IsConst() {
			arr.SetArrayItem(i, mw.a.NewString(string(rep.Const)))
			continue
		}
		id, ok := mw.ids[rep]
		if !ok {
			id = mw.next
			mw.next++
			mw.ids[rep] = id
		}
		arr.SetArrayItem(i, mw.a.NewNumberInt(id))
	}
	return arr
}

func writeAttributes(a *fastjson.Arena, attrs *Attributes) *fastjson.Value {
	v := a.NewObject()
	for _, k := range attrs.keys {
		v.Set(k, a.NewString(attrs.vals[k]))
	}
	return v
}

func hideName(a *fastjson.Arena, name string) *fastjson.Value {
	if IsPublic(name) {
		return a.NewNumberInt(0)
	}
	return a.NewNumberInt(1)
}
