package tx

// Entry is one committed transaction in the undo/redo history.
type Entry struct {
	// Before is the version the transaction started from.
	Before int
	// After is the version it published.
	After int
	// Tables lists the tables it wrote.
	Tables []string
}

// History is a linear undo/redo log.
// Recording a new entry discards everything that could be redone.
type History struct {
	undo []Entry
	redo []Entry
}

// Record pushes e on the undo stack and clears the redo stack.
func (h *History) Record(e Entry) {
	h.undo = append(h.undo, e)
	h.ClearRedo()
}

// ClearRedo discards everything that could be redone.
func (h *History) ClearRedo() {
	h.redo = h.redo[:0]
}

// PeekUndo returns the entry the next undo would revert.
func (h *History) PeekUndo() (Entry, bool) {
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	return h.undo[len(h.undo)-1], true
}

// PeekRedo returns the entry the next redo would reapply.
func (h *History) PeekRedo() (Entry, bool) {
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	return h.redo[len(h.redo)-1], true
}

// Undo moves the top undo entry to the redo stack.
func (h *History) Undo() (Entry, bool) {
	e, ok := h.PeekUndo()
	if !ok {
		return Entry{}, false
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return e, true
}

// Redo moves the top redo entry back to the undo stack.
func (h *History) Redo() (Entry, bool) {
	e, ok := h.PeekRedo()
	if !ok {
		return Entry{}, false
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return e, true
}

// CanUndo returns true if there is an entry to undo.
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo returns true if there is an entry to redo.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Depth returns the sizes of the undo and redo stacks.
func (h *History) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}
