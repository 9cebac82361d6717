package core

import "fmt"

// IdentifierPool hands out the lowest free slot index to an owner and
// reuses released slots.
type IdentifierPool struct {
	owners []interface{}
	max    uint32
}

// NewIdentifierPool creates a pool that never grows beyond max slots. A max of 0 means unbounded.
func NewIdentifierPool(max uint32) *IdentifierPool {
	return &IdentifierPool{max: max}
}

func (p *IdentifierPool) Acquire(owner interface{}) (uint32, error) {
	if owner == nil {
		return 0, fmt.Errorf("identifier pool: owner cannot be nil")
	}
	for i := range p.owners {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i), nil
		}
	}
	if p.max > 0 && uint32(len(p.owners)) >= p.max {
		return 0, fmt.Errorf("identifier pool: all %d slots in use", p.max)
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1), nil
}

func (p *IdentifierPool) Release(id uint32) error {
	if id >= uint32(len(p.owners)) {
		return fmt.Errorf("identifier pool: id '%d' out of range (max=%d). Nothing was done", id, len(p.owners))
	}
	p.owners[id] = nil
	return nil
}

func (p *IdentifierPool) Owner(id uint32) (interface{}, bool) {
	if id >= uint32(len(p.owners)) || p.owners[id] == nil {
		return nil, false
	}
	return p.owners[id], true
}

func (p *IdentifierPool) InUse() int {
	n := 0
	for _, o := range p.owners {
		if o != nil {
			n++
		}
	}
	return n
}
