package physics

import (
	"errors"
	"math"
)

// ErrPoolExhausted is the panic value raised when the pool cannot address
// another node. There is no recovery: dropping a node would corrupt lists.
var ErrPoolExhausted = errors.New("physics: node pool exhausted")

// nilNode terminates a node list.
const nilNode int32 = -1

// node is one slot of an intrusive singly-linked list.
type node struct {
	item int32 // index of the referenced item (e.g. body slice index)
	next int32 // index of the next node, or nilNode
}

// NodePool is a bump allocator for list nodes. It is reset, not freed,
// every tick so the steady state allocates nothing.
//
// Nodes are addressed by index, so growing the backing array never
// invalidates a list built from it. Lists are only valid until Reset.
type NodePool struct {
	nodes []node
	next  int
}

// NewNodePool creates a pool with room for capacity nodes.
func NewNodePool(capacity int) *NodePool {
	if capacity < 1 {
		capacity = 1
	}
	return &NodePool{nodes: make([]node, capacity)}
}

// Reset rewinds the cursor. Old nodes are neither released nor zeroed;
// their links are overwritten on reuse.
func (p *NodePool) Reset() {
	p.next = 0
}

// Allocate hands out the slot at the cursor, doubling capacity when full.
func (p *NodePool) Allocate() int32 {
	if p.next >= len(p.nodes) {
		p.grow()
	}
	idx := p.next
	p.next++
	return int32(idx)
}

func (p *NodePool) grow() {
	if len(p.nodes) >= math.MaxInt32 {
		panic(ErrPoolExhausted)
	}
	newCap := len(p.nodes) * 2
	if newCap > math.MaxInt32 {
		newCap = math.MaxInt32
	}
	grown := make([]node, newCap)
	copy(grown, p.nodes)
	p.nodes = grown
}

// Len returns the number of nodes handed out since the last Reset.
func (p *NodePool) Len() int {
	return p.next
}

// Cap returns the current capacity of the pool.
func (p *NodePool) Cap() int {
	return len(p.nodes)
}

// push allocates a node referencing item and prepends it to list.
func (p *NodePool) push(list *NodeList, item int32) {
	idx := p.Allocate()
	p.nodes[idx] = node{item: item, next: list.head}
	list.head = idx
	list.count++
}

// NodeList is an unordered list of item indices backed by a NodePool.
// The count is authoritative, so the zero value is an empty list.
type NodeList struct {
	head  int32
	count int
}

// Len returns the number of items in the list.
func (l NodeList) Len() int {
	return l.count
}
