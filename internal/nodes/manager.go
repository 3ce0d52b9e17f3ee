package nodes

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrFull is returned by Acquire when every slot is taken.
var ErrFull = errors.New("system full")

// Manager hands out a fixed number of connection slots.
type Manager struct {
	mu       sync.RWMutex
	maxNodes int
	nodes    []*Node
}

func NewManager(maxNodes int) *Manager {
	if maxNodes <= 0 {
		maxNodes = 10
	}
	return &Manager{
		maxNodes: maxNodes,
		nodes:    make([]*Node, maxNodes),
	}
}

// Acquire takes the lowest free slot.
func (m *Manager) Acquire() (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, n := range m.nodes {
		if n == nil {
			node := &Node{
				ID:        i + 1,
				SessionID: uuid.New(),
			}
			m.nodes[i] = node
			return node, nil
		}
	}
	return nil, ErrFull
}

func (m *Manager) Release(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 1 || id > m.maxNodes {
		return
	}
	m.nodes[id-1] = nil
}

func (m *Manager) Get(id int) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > m.maxNodes {
		return nil
	}
	return m.nodes[id-1]
}

// Active returns the number of occupied slots.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, n := range m.nodes {
		if n != nil {
			count++
		}
	}
	return count
}

// Attach sets the connection occupying slot id.
func (m *Manager) Attach(id int, conn Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id < 1 || id > m.maxNodes || m.nodes[id-1] == nil {
		return
	}
	m.nodes[id-1].Conn = conn
}

// List returns the occupied slots ordered by ID.
func (m *Manager) List() []*Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var list []*Node
	for _, n := range m.nodes {
		if n != nil {
			list = append(list, n)
		}
	}
	return list
}

func (m *Manager) Broadcast(msg string) {
	m.BroadcastExcept(msg, -1)
}

func (m *Manager) BroadcastExcept(msg string, exceptID int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, n := range m.nodes {
		if n != nil && n.Conn != nil && n.ID != exceptID {
			// Ignore errors for broadcast
			n.Conn.Send(msg)
		}
	}
}
