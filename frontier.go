package decodex

import (
	"container/heap"
	"sync"
)

// Frontier is the shared min-priority queue of SearchNodes, ordered by
// ascending TotalCost, then ascending Depth, then FIFO insertion order. A
// coarse mutex guards push/pop; the lock is only ever held for the duration
// of a heap operation, never across node expansion, so a batched parallel
// expansion never contends with the frontier beyond a handful of
// instructions per node.
type Frontier struct {
	mu   sync.Mutex
	heap nodeHeap
	next int
}

// NewFrontier returns an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{heap: make(nodeHeap, 0, 64)}
}

// Push inserts node into the frontier.
func (f *Frontier) Push(node SearchNode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	node.seq = f.next
	f.next++
	heap.Push(&f.heap, node)
}

// Pop removes and returns the minimum node, or ok=false if the frontier is
// empty.
func (f *Frontier) Pop() (node SearchNode, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.heap) == 0 {
		return SearchNode{}, false
	}
	return heap.Pop(&f.heap).(SearchNode), true
}

// PopBatch removes and returns up to n minimum nodes, fewer if the frontier
// is smaller than n.
func (f *Frontier) PopBatch(n int) []SearchNode {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.heap) {
		n = len(f.heap)
	}
	batch := make([]SearchNode, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, heap.Pop(&f.heap).(SearchNode))
	}
	return batch
}

// IsEmpty reports whether the frontier currently holds no nodes.
func (f *Frontier) IsEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.heap) == 0
}

// Size returns the current node count.
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.heap)
}

// nodeHeap implements container/heap.Interface over SearchNode, ordered by
// (TotalCost asc, Depth asc, seq asc).
type nodeHeap []SearchNode

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].TotalCost != h[j].TotalCost {
		return h[i].TotalCost < h[j].TotalCost
	}
	if h[i].Depth != h[j].Depth {
		return h[i].Depth < h[j].Depth
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x interface{}) {
	*h = append(*h, x.(SearchNode))
}

func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	node := old[n-1]
	*h = old[:n-1]
	return node
}
