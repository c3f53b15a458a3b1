package layout

// TopLayout is the distinguished "some struct dict of unknown shape"
// descriptor: serial 0, parent of every concrete layout. It has no slot
// table and no instance ever uses it directly; it exists so the JIT can
// reason about struct dicts whose concrete shape is unknown.
type TopLayout struct {
	index Index
}

func newTopLayout() *TopLayout {
	return &TopLayout{index: TopIndex()}
}

// TopIndex is the published index of the Top layout.
func TopIndex() Index {
	return EncodeIndex(0)
}

// Index returns the Top layout's index.
func (l *TopLayout) Index() Index { return l.index }

func (l *TopLayout) String() string { return "StructDict<Top>" }
