package netlist

// SigMap maps every bit of a module to a canonical representative of the
// net it belongs to, following the module's connections. A net tied to a
// constant is represented by that constant.
type SigMap struct {
	parent map[SigBit]SigBit
}

// NewSigMap builds the map for the current connections of m. Later
// connections are not reflected.
func NewSigMap(m *Module) *SigMap {
	sm := &SigMap{parent: make(map[SigBit]SigBit)}
	for _, c := range m.conns {
		for i := range c.Lhs {
			sm.union(c.Lhs[i], c.Rhs[i])
		}
	}
	return sm
}

// Bit returns the representative of b.
func (sm *SigMap) Bit(b SigBit) SigBit {
	return sm.find(b)
}

// Map returns the representatives of every bit of s.
func (sm *SigMap) Map(s SigSpec) SigSpec {
	out := make(SigSpec, len(s))
	for i, b := range s {
		out[i] = sm.find(b)
	}
	return out
}

func (sm *SigMap) find(b SigBit) SigBit {
	root := b
	for {
		p, ok := sm.parent[root]
		if !ok || p == root {
			break
		}
		root = p
	}
	// path compression
	for b != root {
		p := sm.parent[b]
		sm.parent[b] = root
		b = p
	}
	return root
}

func (sm *SigMap) union(a, b SigBit) {
	ra, rb := sm.find(a), sm.find(b)
	if ra == rb {
		return
	}
	// constants always end up as the representative
	if rb.IsConst() && !ra.IsConst() {
		ra, rb = rb, ra
	}
	sm.parent[rb] = ra
	if _, ok := sm.parent[ra]; !ok {
		sm.parent[ra] = ra
	}
}
