package model

import (
	"cmp"
	"net/netip"
	"slices"
)

// OpenSockets maps every local socket seen during one scan to a process that
// reported it.
//
// A socket reported by several processes (SO_REUSEPORT, descriptors inherited
// across fork) keeps the owner that was recorded last. Which one that is
// depends on the order the process table was enumerated in, so attribution of
// shared sockets may differ between two scans of an unchanged host.
type OpenSockets map[LocalSocket]ProcessInfo

// Lookup returns the owner of exactly this socket.
func (o OpenSockets) Lookup(s LocalSocket) (ProcessInfo, bool) {
	p, ok := o[s]
	return p, ok
}

// LookupAddr returns the owner of the socket at ip:port, treating an IPv4
// address and its IPv4-mapped IPv6 form as the same endpoint. AF_INET6 sockets
// talking to IPv4 peers are reported by the kernel in the mapped form.
func (o OpenSockets) LookupAddr(ip netip.Addr, port uint16, proto Protocol) (ProcessInfo, bool) {
	for _, candidate := range addrForms(ip) {
		if p, ok := o[LocalSocket{IP: candidate, Port: port, Protocol: proto}]; ok {
			return p, true
		}
	}
	return ProcessInfo{}, false
}

// Owner resolves the process behind an observed local endpoint. The address
// is tried as given and in its IPv4/IPv4-mapped twin form, then the wildcard
// listeners that would accept traffic for it: 0.0.0.0 for IPv4, :: for IPv6,
// and :: for IPv4 as well when a dual-stack socket holds the port.
func (o OpenSockets) Owner(ip netip.Addr, port uint16, proto Protocol) (ProcessInfo, bool) {
	if p, ok := o.LookupAddr(ip, port, proto); ok {
		return p, true
	}
	wildcards := []netip.Addr{netip.IPv6Unspecified()}
	if ip.Unmap().Is4() {
		wildcards = []netip.Addr{netip.IPv4Unspecified(), netip.IPv6Unspecified()}
	}
	for _, candidate := range wildcards {
		if p, ok := o[LocalSocket{IP: candidate, Port: port, Protocol: proto}]; ok {
			return p, true
		}
	}
	return ProcessInfo{}, false
}

func addrForms(ip netip.Addr) []netip.Addr {
	switch {
	case ip.Is4In6():
		return []netip.Addr{ip, ip.Unmap()}
	case ip.Is4():
		return []netip.Addr{ip, netip.AddrFrom16(ip.As16())}
	}
	return []netip.Addr{ip}
}

// Record is a flattened socket/owner pair.
type Record struct {
	Protocol Protocol   `json:"protocol"`
	Address  netip.Addr `json:"address"`
	Port     uint16     `json:"port"`
	Process  string     `json:"process"`
	PID      uint32     `json:"pid"`
}

func (r Record) Socket() LocalSocket {
	return LocalSocket{IP: r.Address, Port: r.Port, Protocol: r.Protocol}
}

func (r Record) Owner() ProcessInfo {
	return ProcessInfo{Name: r.Process, PID: r.PID}
}

// Records returns the mapping as a slice ordered by protocol, address and port.
func (o OpenSockets) Records() []Record {
	records := make([]Record, 0, len(o))
	for s, p := range o {
		records = append(records, Record{
			Protocol: s.Protocol,
			Address:  s.IP,
			Port:     s.Port,
			Process:  p.Name,
			PID:      p.PID,
		})
	}
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Or(
			cmp.Compare(a.Protocol, b.Protocol),
			a.Address.Compare(b.Address),
			cmp.Compare(a.Port, b.Port),
		)
	})
	return records
}
