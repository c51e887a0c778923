package pipeline

import (
	"slices"

	"go.uber.org/zap"

	"github.com/pranshuparmar/sockowner/internal/proc"
	"github.com/pranshuparmar/sockowner/pkg/model"
)

type ScanConfig struct {
	Table  proc.Table
	Logger *zap.Logger
}

// OpenSockets takes a fresh snapshot of which process owns which local
// socket. It never fails: an unreadable process table yields an empty map, a
// process whose identity cannot be read is skipped, and a socket table that
// cannot be read counts as empty for that process only. Every degradation is
// logged at debug level.
func OpenSockets(cfg ScanConfig) model.OpenSockets {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	sockets := make(model.OpenSockets)
	processes, err := cfg.Table.Processes()
	if err != nil {
		log.Debug("process table unavailable", zap.Error(err))
		return sockets
	}

	skipped := 0
	for _, p := range processes {
		info, err := p.Identity()
		if err != nil {
			skipped++
			log.Debug("skipping process without identity", zap.Error(err))
			continue
		}

		tcp := slices.Concat(
			fetch(p.TCP, "tcp", info, log),
			fetch(p.TCP6, "tcp6", info, log),
		)
		udp := slices.Concat(
			fetch(p.UDP, "udp", info, log),
			fetch(p.UDP6, "udp6", info, log),
		)
		// Later processes overwrite earlier ones on the same key.
		for _, e := range unify(tcp, udp) {
			sockets[Key(e)] = info
		}
	}

	log.Debug("socket scan complete",
		zap.Int("processes", len(processes)),
		zap.Int("skipped", skipped),
		zap.Int("sockets", len(sockets)),
	)
	return sockets
}

// fetch reads one socket table of a process; a failed read is an empty table.
func fetch[T any](read func() ([]T, error), family string, owner model.ProcessInfo, log *zap.Logger) []T {
	entries, err := read()
	if err != nil {
		log.Debug("socket table unavailable",
			zap.Uint32("pid", owner.PID),
			zap.String("family", family),
			zap.Error(err),
		)
		return nil
	}
	return entries
}
