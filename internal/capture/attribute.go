// Package capture attributes the packets of a capture file to the local
// processes owning their endpoints.
package capture

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/pranshuparmar/sockowner/pkg/model"
)

// Attribution is the owner of one packet's local endpoint, if known.
type Attribution struct {
	Packet    int                `json:"packet"`
	Timestamp time.Time          `json:"timestamp"`
	Protocol  model.Protocol     `json:"protocol"`
	Src       netip.AddrPort     `json:"src"`
	Dst       netip.AddrPort     `json:"dst"`
	Local     *model.LocalSocket `json:"-"`
	Owner     *model.ProcessInfo `json:"owner,omitempty"`
}

// ReadFile attributes every TCP and UDP packet of a pcap file.
func ReadFile(path string, sockets model.OpenSockets) ([]Attribution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()
	return Attribute(f, sockets)
}

// Attribute reads pcap data from r. Packets that are not TCP or UDP over IP
// are skipped but still counted, so Packet matches the capture's numbering.
func Attribute(r io.Reader, sockets model.OpenSockets) ([]Attribution, error) {
	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}

	source := gopacket.NewPacketSource(reader, reader.LinkType())
	source.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	var out []Attribution
	for n := 1; ; n++ {
		packet, err := source.NextPacket()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read packet %d: %w", n, err)
		}

		a, ok := endpoints(packet)
		if !ok {
			continue
		}
		a.Packet = n
		a.Timestamp = packet.Metadata().Timestamp
		resolve(&a, sockets)
		out = append(out, a)
	}
}

func endpoints(packet gopacket.Packet) (Attribution, bool) {
	var src, dst netip.Addr
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		src, _ = netip.AddrFromSlice(ip.SrcIP.To4())
		dst, _ = netip.AddrFromSlice(ip.DstIP.To4())
	case *layers.IPv6:
		src, _ = netip.AddrFromSlice(ip.SrcIP)
		dst, _ = netip.AddrFromSlice(ip.DstIP)
	default:
		return Attribution{}, false
	}

	switch t := packet.TransportLayer().(type) {
	case *layers.TCP:
		return Attribution{
			Protocol: model.ProtocolTCP,
			Src:      netip.AddrPortFrom(src, uint16(t.SrcPort)),
			Dst:      netip.AddrPortFrom(dst, uint16(t.DstPort)),
		}, true
	case *layers.UDP:
		return Attribution{
			Protocol: model.ProtocolUDP,
			Src:      netip.AddrPortFrom(src, uint16(t.SrcPort)),
			Dst:      netip.AddrPortFrom(dst, uint16(t.DstPort)),
		}, true
	}
	return Attribution{}, false
}

// resolve looks for an exact socket on either side before falling back to
// wildcard listeners, so a remote port that happens to equal a local
// listening port does not win over the real local endpoint.
func resolve(a *Attribution, sockets model.OpenSockets) {
	for _, ep := range []netip.AddrPort{a.Src, a.Dst} {
		if p, ok := sockets.LookupAddr(ep.Addr(), ep.Port(), a.Protocol); ok {
			s := model.LocalSocket{IP: ep.Addr(), Port: ep.Port(), Protocol: a.Protocol}
			a.Local, a.Owner = &s, &p
			return
		}
	}
	for _, ep := range []netip.AddrPort{a.Src, a.Dst} {
		if p, ok := sockets.Owner(ep.Addr(), ep.Port(), a.Protocol); ok {
			s := model.LocalSocket{IP: ep.Addr(), Port: ep.Port(), Protocol: a.Protocol}
			a.Local, a.Owner = &s, &p
			return
		}
	}
}
