package registry

// Element is where a rendering pass placed an item. It is only valid until the
// next render; never hold on to it.
type Element struct {
	Row    int
	UnitID string
}

// Container is the rendered output a pass attaches items to.
type Container interface {
	Lookup(itemID string) (Element, bool)
}

// Attach rebuilds the item -> element associations from c. Items not found in
// c are left unassociated. It returns the number of attached items.
func (r *Registry) Attach(c Container) int {
	r.elements = make(map[string]Element, len(r.items))
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range r.items {
		el, ok := c.Lookup(it.ID)
		if !ok {
			continue
		}
		r.elements[it.ID] = el
		n++
	}
	return n
}

func (r *Registry) Element(id string) (Element, bool) {
	el, ok := r.elements[id]
	return el, ok
}
