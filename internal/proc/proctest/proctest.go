// Package proctest builds fake procfs trees for tests.
package proctest

import (
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
)

// Socket is a row written to one of a process's net tables.
type Socket struct {
	Local netip.AddrPort
	Inode uint64
	// Unowned rows appear in the table but no fd of the process points at them.
	Unowned bool
}

type Process struct {
	PID  int
	Comm string

	TCP  []Socket
	TCP6 []Socket
	UDP  []Socket
	UDP6 []Socket

	// Omit lists paths relative to the process directory that are not
	// created, e.g. "stat", "net/tcp" or "fd".
	Omit []string
}

// Build writes the processes under a fresh temporary directory and returns it
// for use as a procfs mount point.
func Build(t testing.TB, procs ...Process) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range procs {
		if err := write(root, p); err != nil {
			t.Fatalf("build proc %d: %v", p.PID, err)
		}
	}
	return root
}

func write(root string, p Process) error {
	dir := filepath.Join(root, strconv.Itoa(p.PID))
	if err := os.MkdirAll(filepath.Join(dir, "net"), 0o755); err != nil {
		return err
	}

	if !slices.Contains(p.Omit, "stat") {
		if err := os.WriteFile(filepath.Join(dir, "stat"), []byte(statLine(p.PID, p.Comm)), 0o644); err != nil {
			return err
		}
	}

	tables := []struct {
		name    string
		sockets []Socket
		udp     bool
	}{
		{"tcp", p.TCP, false},
		{"tcp6", p.TCP6, false},
		{"udp", p.UDP, true},
		{"udp6", p.UDP6, true},
	}
	var owned []uint64
	for _, tbl := range tables {
		if slices.Contains(p.Omit, "net/"+tbl.name) {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, "net", tbl.name), []byte(netTable(tbl.sockets, tbl.udp)), 0o644); err != nil {
			return err
		}
		for _, s := range tbl.sockets {
			if !s.Unowned {
				owned = append(owned, s.Inode)
			}
		}
	}

	if slices.Contains(p.Omit, "fd") {
		return nil
	}
	fdDir := filepath.Join(dir, "fd")
	if err := os.MkdirAll(fdDir, 0o755); err != nil {
		return err
	}
	// fds 0-2 point at something other than sockets, as on a real host.
	for fd := range 3 {
		if err := os.Symlink("/dev/null", filepath.Join(fdDir, strconv.Itoa(fd))); err != nil {
			return err
		}
	}
	for i, inode := range owned {
		link := fmt.Sprintf("socket:[%d]", inode)
		if err := os.Symlink(link, filepath.Join(fdDir, strconv.Itoa(i+3))); err != nil {
			return err
		}
	}
	return nil
}

func statLine(pid int, comm string) string {
	// 52 fields as in proc(5); only pid and comm matter here.
	rest := "S 1 %d %d 0 -1 4194560 120 0 0 0 3 1 0 0 20 0 1 0 4242 12345678 321 18446744073709551615 " +
		"1 1 0 0 0 0 0 0 0 0 0 0 17 0 0 0 0 0 0 0 0 0 0 0 0 0 0\n"
	return fmt.Sprintf("%d (%s) ", pid, comm) + fmt.Sprintf(rest, pid, pid)
}

func netTable(sockets []Socket, udp bool) string {
	var b strings.Builder
	b.WriteString("  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode ref pointer drops\n")
	for i, s := range sockets {
		state := 0x0A
		if udp {
			state = 0x07
		}
		remote := netip.AddrPortFrom(zero(s.Local.Addr()), 0)
		fmt.Fprintf(&b, "%4d: %s %s %02X 00000000:00000000 00:00000000 00000000  1000        0 %d 2 0000000000000000 0\n",
			i, HexAddrPort(s.Local), HexAddrPort(remote), state, s.Inode)
	}
	return b.String()
}

func zero(a netip.Addr) netip.Addr {
	if a.Is4() {
		return netip.IPv4Unspecified()
	}
	return netip.IPv6Unspecified()
}

// HexAddrPort encodes an address the way the kernel prints it in
// /proc/net/{tcp,udp}{,6}: the address as 32-bit words in host (little
// endian) byte order, then the port in big-endian hex.
func HexAddrPort(ap netip.AddrPort) string {
	addr := ap.Addr()
	var b strings.Builder
	if addr.Is4() {
		ip := addr.As4()
		fmt.Fprintf(&b, "%02X%02X%02X%02X", ip[3], ip[2], ip[1], ip[0])
	} else {
		ip := addr.As16()
		for i := 0; i < 4; i++ {
			fmt.Fprintf(&b, "%02X%02X%02X%02X", ip[i*4+3], ip[i*4+2], ip[i*4+1], ip[i*4+0])
		}
	}
	fmt.Fprintf(&b, ":%04X", ap.Port())
	return b.String()
}
