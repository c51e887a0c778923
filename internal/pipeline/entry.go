package pipeline

import (
	"net/netip"

	"github.com/pranshuparmar/sockowner/internal/proc"
	"github.com/pranshuparmar/sockowner/pkg/model"
)

// Entry is a socket table row reduced to what the index needs. Only tcpEntry
// and udpEntry implement it.
type Entry interface {
	LocalAddr() netip.AddrPort
	Protocol() model.Protocol
	isEntry()
}

type tcpEntry proc.TCPEntry

func (e tcpEntry) LocalAddr() netip.AddrPort { return e.Local }
func (tcpEntry) Protocol() model.Protocol    { return model.ProtocolTCP }
func (tcpEntry) isEntry()                    {}

type udpEntry proc.UDPEntry

func (e udpEntry) LocalAddr() netip.AddrPort { return e.Local }
func (udpEntry) Protocol() model.Protocol    { return model.ProtocolUDP }
func (udpEntry) isEntry()                    {}

// Key builds the index key of an entry.
func Key(e Entry) model.LocalSocket {
	local := e.LocalAddr()
	return model.LocalSocket{
		IP:       local.Addr(),
		Port:     local.Port(),
		Protocol: e.Protocol(),
	}
}

// unify wraps the TCP rows followed by the UDP rows, keeping their order.
func unify(tcp []proc.TCPEntry, udp []proc.UDPEntry) []Entry {
	entries := make([]Entry, 0, len(tcp)+len(udp))
	for _, e := range tcp {
		entries = append(entries, tcpEntry(e))
	}
	for _, e := range udp {
		entries = append(entries, udpEntry(e))
	}
	return entries
}
