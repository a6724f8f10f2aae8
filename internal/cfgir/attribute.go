package cfgir

// Attribute distinguishes what a cfg_node represents: a basic block,
// or one of the two per-function sentinels.
type Attribute interface {
	isAttribute()
}

// EntryAttr wraps a function's argument vector.
type EntryAttr struct {
	Arguments []*Variable
}

func (EntryAttr) isAttribute() {}

// ExitAttr wraps a function's result vector.
type ExitAttr struct {
	Results []*Variable
}

func (ExitAttr) isAttribute() {}

// BasicBlockAttr holds an ordered list of tacs, mirroring a reference
// basic_block: append/first/last/drop_first/drop_last
// plus a size query, backed by a slice rather than a linked list.
type BasicBlockAttr struct {
	tacs []*Tac
}

func (*BasicBlockAttr) isAttribute() {}

func (b *BasicBlockAttr) NTacs() int { return len(b.tacs) }

func (b *BasicBlockAttr) Tacs() []*Tac {
	out := make([]*Tac, len(b.tacs))
	copy(out, b.tacs)
	return out
}

func (b *BasicBlockAttr) First() *Tac {
	if len(b.tacs) == 0 {
		return nil
	}
	return b.tacs[0]
}

func (b *BasicBlockAttr) Last() *Tac {
	if len(b.tacs) == 0 {
		return nil
	}
	return b.tacs[len(b.tacs)-1]
}

func (b *BasicBlockAttr) Append(t *Tac) *Tac {
	b.tacs = append(b.tacs, t)
	return t
}

func (b *BasicBlockAttr) DropFirst() {
	b.tacs = b.tacs[1:]
}

func (b *BasicBlockAttr) DropLast() {
	b.tacs = b.tacs[:len(b.tacs)-1]
}
