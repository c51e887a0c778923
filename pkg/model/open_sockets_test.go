package model

import (
	"encoding/json"
	"net/netip"
	"testing"
)

func sock(addr string, port uint16, proto Protocol) LocalSocket {
	return LocalSocket{IP: netip.MustParseAddr(addr), Port: port, Protocol: proto}
}

func TestLocalSocketIsStructuralKey(t *testing.T) {
	sockets := OpenSockets{}
	sockets[sock("127.0.0.1", 8080, ProtocolTCP)] = ProcessInfo{Name: "curl", PID: 100}

	if _, ok := sockets.Lookup(sock("127.0.0.1", 8080, ProtocolTCP)); !ok {
		t.Fatal("expected equal socket to hit the same key")
	}
	if _, ok := sockets.Lookup(sock("127.0.0.1", 8080, ProtocolUDP)); ok {
		t.Error("protocol must be part of the key")
	}
	if _, ok := sockets.Lookup(sock("127.0.0.1", 8081, ProtocolTCP)); ok {
		t.Error("port must be part of the key")
	}
	if _, ok := sockets.Lookup(sock("127.0.0.2", 8080, ProtocolTCP)); ok {
		t.Error("address must be part of the key")
	}
}

func TestOwner(t *testing.T) {
	sockets := OpenSockets{
		sock("127.0.0.1", 8080, ProtocolTCP):        {Name: "curl", PID: 100},
		sock("0.0.0.0", 22, ProtocolTCP):            {Name: "sshd", PID: 1},
		sock("::", 53, ProtocolUDP):                 {Name: "dnsmasq", PID: 7},
		sock("::1", 631, ProtocolTCP):               {Name: "cupsd", PID: 9},
		sock("::ffff:10.0.0.5", 45678, ProtocolTCP): {Name: "java", PID: 42},
		sock("10.0.0.7", 5000, ProtocolUDP):         {Name: "client", PID: 8},
	}

	tests := []struct {
		name  string
		addr  string
		port  uint16
		proto Protocol
		want  uint32
		found bool
	}{
		{"exact", "127.0.0.1", 8080, ProtocolTCP, 100, true},
		{"v4 wildcard", "10.0.0.5", 22, ProtocolTCP, 1, true},
		{"dual stack wildcard", "192.168.1.2", 53, ProtocolUDP, 7, true},
		{"v6 wildcard", "fe80::1", 53, ProtocolUDP, 7, true},
		{"mapped v4", "::ffff:10.0.0.5", 22, ProtocolTCP, 1, true},
		{"v4 to mapped socket", "10.0.0.5", 45678, ProtocolTCP, 42, true},
		{"mapped to v4 socket", "::ffff:10.0.0.7", 5000, ProtocolUDP, 8, true},
		{"wrong protocol", "10.0.0.5", 22, ProtocolUDP, 0, false},
		{"v6 loopback only", "::2", 631, ProtocolTCP, 0, false},
		{"unknown port", "127.0.0.1", 9, ProtocolTCP, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := sockets.Owner(netip.MustParseAddr(tt.addr), tt.port, tt.proto)
			if ok != tt.found {
				t.Fatalf("Owner found = %v, want %v", ok, tt.found)
			}
			if ok && p.PID != tt.want {
				t.Errorf("Owner pid = %d, want %d", p.PID, tt.want)
			}
		})
	}
}

func TestLookupAddr(t *testing.T) {
	sockets := OpenSockets{
		sock("::ffff:10.0.0.5", 45678, ProtocolTCP): {Name: "java", PID: 42},
		sock("0.0.0.0", 22, ProtocolTCP):            {Name: "sshd", PID: 1},
	}
	if p, ok := sockets.LookupAddr(netip.MustParseAddr("10.0.0.5"), 45678, ProtocolTCP); !ok || p.PID != 42 {
		t.Errorf("LookupAddr = %v, %v; want java", p, ok)
	}
	if _, ok := sockets.LookupAddr(netip.MustParseAddr("10.0.0.5"), 22, ProtocolTCP); ok {
		t.Error("LookupAddr must not fall back to wildcard listeners")
	}
}

func TestRecordsAreSorted(t *testing.T) {
	sockets := OpenSockets{
		sock("::1", 53, ProtocolUDP):        {Name: "dnsmasq", PID: 7},
		sock("127.0.0.1", 443, ProtocolTCP): {Name: "nginx", PID: 20},
		sock("127.0.0.1", 80, ProtocolTCP):  {Name: "nginx", PID: 20},
		sock("0.0.0.0", 9999, ProtocolTCP):  {Name: "app", PID: 30},
	}

	records := sockets.Records()
	want := []string{
		"0.0.0.0:9999/tcp",
		"127.0.0.1:80/tcp",
		"127.0.0.1:443/tcp",
		"[::1]:53/udp",
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, r := range records {
		if got := r.Socket().String(); got != want[i] {
			t.Errorf("record %d = %s, want %s", i, got, want[i])
		}
		if sockets[r.Socket()] != r.Owner() {
			t.Errorf("record %d owner %v does not match mapping", i, r.Owner())
		}
	}
}

func TestRecordJSON(t *testing.T) {
	r := Record{
		Protocol: ProtocolUDP,
		Address:  netip.MustParseAddr("::1"),
		Port:     53,
		Process:  "dnsmasq",
		PID:      7,
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"protocol":"udp","address":"::1","port":53,"process":"dnsmasq","pid":7}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != r {
		t.Errorf("decoded %+v, want %+v", back, r)
	}
}

func TestParseProtocol(t *testing.T) {
	if p, err := ParseProtocol("TCP"); err != nil || p != ProtocolTCP {
		t.Errorf("ParseProtocol(TCP) = %v, %v", p, err)
	}
	if _, err := ParseProtocol("sctp"); err == nil {
		t.Error("expected error for sctp")
	}
	if _, err := Protocol(0).MarshalText(); err == nil {
		t.Error("expected error marshalling zero protocol")
	}
}
