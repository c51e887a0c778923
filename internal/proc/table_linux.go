//go:build linux

package proc

import (
	"fmt"
	"net"
	"net/netip"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"

	"github.com/pranshuparmar/sockowner/pkg/model"
)

type procfsTable struct {
	root      string
	ownedOnly bool
}

func newPlatformTable(opts Options) Table {
	root := opts.Root
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	return &procfsTable{root: root, ownedOnly: opts.OwnedOnly}
}

func (t *procfsTable) Processes() ([]Process, error) {
	fs, err := procfs.NewFS(t.root)
	if err != nil {
		return nil, fmt.Errorf("open procfs at %s: %w", t.root, err)
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes in %s: %w", t.root, err)
	}

	processes := make([]Process, 0, len(procs))
	for _, p := range procs {
		processes = append(processes, &procfsProcess{
			proc:      p,
			dir:       filepath.Join(t.root, strconv.Itoa(p.PID)),
			ownedOnly: t.ownedOnly,
		})
	}
	return processes, nil
}

// procfsProcess reads /proc/<pid>/net/* through a procfs.FS rooted at the
// process directory, so each process sees its own network namespace.
type procfsProcess struct {
	proc      procfs.Proc
	dir       string
	ownedOnly bool

	inodesRead bool
	inodes     map[uint64]struct{}
	inodesErr  error
}

func (p *procfsProcess) Identity() (model.ProcessInfo, error) {
	stat, err := p.proc.Stat()
	if err != nil {
		return model.ProcessInfo{}, fmt.Errorf("read stat of pid %d: %w", p.proc.PID, err)
	}
	return model.ProcessInfo{Name: stat.Comm, PID: uint32(stat.PID)}, nil
}

func (p *procfsProcess) TCP() ([]TCPEntry, error)  { return p.tcp("tcp", procfs.FS.NetTCP) }
func (p *procfsProcess) TCP6() ([]TCPEntry, error) { return p.tcp("tcp6", procfs.FS.NetTCP6) }
func (p *procfsProcess) UDP() ([]UDPEntry, error)  { return p.udp("udp", procfs.FS.NetUDP) }
func (p *procfsProcess) UDP6() ([]UDPEntry, error) { return p.udp("udp6", procfs.FS.NetUDP6) }

func (p *procfsProcess) tcp(name string, read func(procfs.FS) (procfs.NetTCP, error)) ([]TCPEntry, error) {
	fs, err := procfs.NewFS(p.dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.dir, err)
	}
	lines, err := read(fs)
	if err != nil {
		return nil, fmt.Errorf("read %s of pid %d: %w", name, p.proc.PID, err)
	}
	owned, err := p.ownedInodes()
	if err != nil {
		return nil, err
	}

	entries := make([]TCPEntry, 0, len(lines))
	for _, l := range lines {
		if !owns(owned, l.Inode) {
			continue
		}
		local, ok := addrPort(l.LocalAddr, l.LocalPort)
		if !ok {
			continue
		}
		entries = append(entries, TCPEntry{Local: local})
	}
	return entries, nil
}

func (p *procfsProcess) udp(name string, read func(procfs.FS) (procfs.NetUDP, error)) ([]UDPEntry, error) {
	fs, err := procfs.NewFS(p.dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.dir, err)
	}
	lines, err := read(fs)
	if err != nil {
		return nil, fmt.Errorf("read %s of pid %d: %w", name, p.proc.PID, err)
	}
	owned, err := p.ownedInodes()
	if err != nil {
		return nil, err
	}

	entries := make([]UDPEntry, 0, len(lines))
	for _, l := range lines {
		if !owns(owned, l.Inode) {
			continue
		}
		local, ok := addrPort(l.LocalAddr, l.LocalPort)
		if !ok {
			continue
		}
		entries = append(entries, UDPEntry{Local: local})
	}
	return entries, nil
}

// ownedInodes returns the socket inodes held by the process's descriptors, or
// nil when entries are not filtered. The fd directory is read once per handle.
func (p *procfsProcess) ownedInodes() (map[uint64]struct{}, error) {
	if !p.ownedOnly {
		return nil, nil
	}
	if p.inodesRead {
		return p.inodes, p.inodesErr
	}
	p.inodesRead = true

	targets, err := p.proc.FileDescriptorTargets()
	if err != nil {
		p.inodesErr = fmt.Errorf("read fds of pid %d: %w", p.proc.PID, err)
		return nil, p.inodesErr
	}
	p.inodes = make(map[uint64]struct{})
	for _, target := range targets {
		if inode, ok := socketInode(target); ok {
			p.inodes[inode] = struct{}{}
		}
	}
	return p.inodes, nil
}

func owns(owned map[uint64]struct{}, inode uint64) bool {
	if owned == nil {
		return true
	}
	_, ok := owned[inode]
	return ok
}

// socketInode extracts the inode from an fd link target of the form "socket:[12345]".
func socketInode(target string) (uint64, bool) {
	rest, ok := strings.CutPrefix(target, "socket:[")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "]")
	if !ok {
		return 0, false
	}
	inode, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return inode, true
}

func addrPort(ip net.IP, port uint64) (netip.AddrPort, bool) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok || port > 0xffff {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(addr, uint16(port)), true
}
