// Package proc reads the host process table and, for each process, the TCP
// and UDP socket tables it can see.
package proc

import (
	"errors"
	"net/netip"
	"runtime"

	"github.com/pranshuparmar/sockowner/pkg/model"
)

var ErrNotImplemented = errors.New("process table not implemented for GOOS=" + runtime.GOOS)

// TCPEntry is one row of a TCP socket table.
type TCPEntry struct {
	Local netip.AddrPort
}

// UDPEntry is one row of a UDP socket table.
type UDPEntry struct {
	Local netip.AddrPort
}

// Table enumerates the processes visible to the caller.
type Table interface {
	Processes() ([]Process, error)
}

// Process is a handle on one process. Every accessor reads live state and may
// fail independently of the others.
type Process interface {
	Identity() (model.ProcessInfo, error)
	TCP() ([]TCPEntry, error)
	TCP6() ([]TCPEntry, error)
	UDP() ([]UDPEntry, error)
	UDP6() ([]UDPEntry, error)
}

type Options struct {
	// Root is the procfs mount point. Empty means /proc.
	Root string
	// OwnedOnly limits a process's entries to sockets held by one of its
	// file descriptors. Without it every process reports every socket of its
	// network namespace.
	OwnedOnly bool
}

// NewTable returns the process table for the current platform.
func NewTable(opts Options) Table {
	return newPlatformTable(opts)
}
