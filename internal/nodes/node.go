package nodes

import (
	"fmt"
	"net"

	"github.com/google/uuid"
)

type TerminalInfo struct {
	Type   string
	Width  int
	Height int
}

// Connection is what a node needs from the transport that occupies it.
type Connection interface {
	Send(msg string) error
	RemoteAddr() net.Addr
	TerminalInfo() TerminalInfo
}

// Node is one occupied connection slot. ID is the slot number, SessionID is
// unique for the lifetime of the process.
type Node struct {
	ID        int
	SessionID uuid.UUID
	Conn      Connection
}

func (n *Node) String() string {
	if n.Conn == nil {
		return fmt.Sprintf("Node %d (Disconnected)", n.ID)
	}
	return fmt.Sprintf("Node %d (%s)", n.ID, n.Conn.RemoteAddr())
}
