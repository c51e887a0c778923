package model

import (
	"fmt"
	"net/netip"
	"strings"
)

// Protocol is the transport a socket belongs to. Only TCP and UDP are modeled.
type Protocol uint8

const (
	ProtocolTCP Protocol = iota + 1
	ProtocolUDP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolUDP:
		return "udp"
	default:
		return fmt.Sprintf("Protocol(%d)", uint8(p))
	}
}

// ParseProtocol accepts "tcp" or "udp" in any case.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp":
		return ProtocolTCP, nil
	case "udp":
		return ProtocolUDP, nil
	}
	return 0, fmt.Errorf("unknown protocol %q", s)
}

func (p Protocol) MarshalText() ([]byte, error) {
	if p != ProtocolTCP && p != ProtocolUDP {
		return nil, fmt.Errorf("invalid protocol %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// LocalSocket identifies one endpoint on the local host. It is comparable and
// used as a map key: two sockets are equal iff address, port and protocol match.
type LocalSocket struct {
	IP       netip.Addr
	Port     uint16
	Protocol Protocol
}

func (s LocalSocket) String() string {
	return netip.AddrPortFrom(s.IP, s.Port).String() + "/" + s.Protocol.String()
}

// ProcessInfo is the identity of a process at scan time.
type ProcessInfo struct {
	Name string `json:"name"`
	PID  uint32 `json:"pid"`
}

func (p ProcessInfo) String() string {
	return fmt.Sprintf("%s (pid %d)", p.Name, p.PID)
}
