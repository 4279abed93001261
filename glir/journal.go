package glir

// Journal is a compacted replay log. It keeps just enough history to
// rebuild the current driver state from scratch after context loss:
// for each live object its CREATE, its latest SIZE, the DATA uploaded since
// that SIZE, and the latest ATTACH of each slot.
//
// Uploads hidden by a later upload covering their region are dropped. Once
// more than maxUploads remain for one object they are folded into a single
// whole-object upload, so the journal stays bounded under streaming
// sub-region updates.
//
// Journal is not safe for concurrent use. It is owned by the interpreter.
type Journal struct {
	order   []ID
	objects map[ID]*journalEntry
}

// maxUploads is the number of uploads kept per object before folding.
const maxUploads = 16

type journalEntry struct {
	create CreateCommand
	size   *SizeCommand
	data   []DataCommand
	attach [NumSlots]*AttachCommand
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{objects: make(map[ID]*journalEntry)}
}

// Record folds cmd into the journal. Commands for unknown objects are
// dropped.
func (j *Journal) Record(cmd Command) {
	switch c := cmd.(type) {
	case CreateCommand:
		if _, ok := j.objects[c.Object]; ok {
			return
		}
		j.objects[c.Object] = &journalEntry{create: c}
		j.order = append(j.order, c.Object)

	case SizeCommand:
		e := j.objects[c.Object]
		if e == nil {
			return
		}
		e.size = &c
		// Resizing discards contents.
		e.data = nil

	case DataCommand:
		e := j.objects[c.Object]
		if e == nil {
			return
		}
		if j.supersedes(e, c.Region) {
			e.data = e.data[:0]
		} else {
			kept := e.data[:0]
			for _, d := range e.data {
				if !covers(c.Region, d.Region) {
					kept = append(kept, d)
				}
			}
			clear(e.data[len(kept):])
			e.data = kept
		}
		e.data = append(e.data, c)
		if len(e.data) > maxUploads {
			e.fold()
		}

	case AttachCommand:
		e := j.objects[c.Object]
		if e == nil || !c.Slot.Valid() {
			return
		}
		if !c.Attached.IsValid() {
			e.attach[c.Slot] = nil
			return
		}
		e.attach[c.Slot] = &c

	case DeleteCommand:
		if _, ok := j.objects[c.Object]; !ok {
			return
		}
		delete(j.objects, c.Object)
		for _, e := range j.objects {
			for i, a := range e.attach {
				if a != nil && a.Attached == c.Object {
					e.attach[i] = nil
				}
			}
		}
		j.compact()
	}
}

// supersedes reports whether an upload to r replaces everything uploaded
// before it: whole-object writes and region-less writes (program sources).
func (j *Journal) supersedes(e *journalEntry, r Region) bool {
	if r == (Region{}) {
		return true
	}
	return e.size != nil && r == Full(e.size.Shape)
}

// covers reports whether outer contains the non-empty region inner.
func covers(outer, inner Region) bool {
	if inner.Width <= 0 || inner.Height <= 0 {
		return false
	}
	return outer.X <= inner.X && outer.Y <= inner.Y &&
		inner.X+inner.Width <= outer.X+outer.Width &&
		inner.Y+inner.Height <= outer.Y+outer.Height
}

// fold replaces the uploads of e with one whole-object upload of the
// resulting contents, starting from the cleared storage SIZE leaves. It
// does nothing when the uploads cannot be laid out in the sized storage.
func (e *journalEntry) fold() {
	if e.size == nil {
		return
	}
	shape := e.size.Shape
	bpp := e.size.Format.BytesPerPixel()
	if e.create.Kind == KindBuffer {
		bpp = 1
	}
	for _, d := range e.data {
		if !shape.Contains(d.Region) || len(d.Data) != d.Region.Width*d.Region.Height*bpp {
			return
		}
	}

	pix := make([]byte, shape.Pixels()*bpp)
	stride := shape.Width * bpp
	for _, d := range e.data {
		row := d.Region.Width * bpp
		for y := 0; y < d.Region.Height; y++ {
			dst := (d.Region.Y+y)*stride + d.Region.X*bpp
			copy(pix[dst:dst+row], d.Data[y*row:(y+1)*row])
		}
	}
	clear(e.data)
	e.data = append(e.data[:0], DataCommand{Object: e.create.Object, Region: Full(shape), Data: pix})
}

// compact drops retired IDs from the creation order once they dominate it.
func (j *Journal) compact() {
	if len(j.order) < 2*len(j.objects)+16 {
		return
	}
	live := j.order[:0]
	for _, id := range j.order {
		if _, ok := j.objects[id]; ok {
			live = append(live, id)
		}
	}
	j.order = live
}

// Replay returns the commands that rebuild the recorded state. Objects are
// recreated, sized and filled in creation order; attachments follow once
// every object exists.
func (j *Journal) Replay() []Command {
	cmds := make([]Command, 0, 3*len(j.objects))
	var attaches []Command

	for _, id := range j.order {
		e, ok := j.objects[id]
		if !ok {
			continue
		}
		cmds = append(cmds, e.create)
		if e.size != nil {
			cmds = append(cmds, *e.size)
		}
		for _, d := range e.data {
			cmds = append(cmds, d)
		}
		for _, a := range e.attach {
			if a != nil {
				attaches = append(attaches, *a)
			}
		}
	}
	return append(cmds, attaches...)
}

// Len returns the number of live objects in the journal.
func (j *Journal) Len() int {
	return len(j.objects)
}

// Clear removes all recorded state.
func (j *Journal) Clear() {
	j.order = j.order[:0]
	j.objects = make(map[ID]*journalEntry)
}
