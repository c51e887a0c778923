// Package target selects socket records by the process that owns them.
package target

import (
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"

	"github.com/pranshuparmar/sockowner/pkg/model"
)

type processNames []model.Record

func (n processNames) String(i int) string { return n[i].Process }
func (n processNames) Len() int            { return len(n) }

// Match keeps the records whose owning process matches query. A numeric
// query selects a pid. Otherwise exact compares names case-insensitively and
// the default is a fuzzy match. The input order is preserved.
func Match(records []model.Record, query string, exact bool) []model.Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}

	if pid, err := strconv.ParseUint(query, 10, 32); err == nil {
		return lo.Filter(records, func(r model.Record, _ int) bool {
			return r.PID == uint32(pid)
		})
	}

	if exact {
		return lo.Filter(records, func(r model.Record, _ int) bool {
			return strings.EqualFold(r.Process, query)
		})
	}

	indexes := lo.Map(fuzzy.FindFrom(query, processNames(records)), func(m fuzzy.Match, _ int) int {
		return m.Index
	})
	slices.Sort(indexes)
	return lo.Map(indexes, func(i int, _ int) model.Record {
		return records[i]
	})
}

// Protocols keeps the records of the selected protocols; no selection keeps all.
func Protocols(records []model.Record, protos ...model.Protocol) []model.Record {
	if len(protos) == 0 {
		return records
	}
	return lo.Filter(records, func(r model.Record, _ int) bool {
		return slices.Contains(protos, r.Protocol)
	})
}
