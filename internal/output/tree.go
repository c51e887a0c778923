package output

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"

	"github.com/pranshuparmar/sockowner/pkg/model"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorGreenTree   = "\033[32m"
	colorDimTree     = "\033[2m"
)

// PrintTree groups the records under the process owning them, ordered by pid.
func PrintTree(w io.Writer, records []model.Record, colorEnabled bool) {
	colorReset := ""
	colorMagenta := ""
	colorGreen := ""
	colorDim := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorGreen = colorGreenTree
		colorDim = colorDimTree
	}

	groups := lo.GroupBy(records, func(r model.Record) model.ProcessInfo { return r.Owner() })
	owners := lo.Keys(groups)
	slices.SortFunc(owners, func(a, b model.ProcessInfo) int {
		return cmp.Or(cmp.Compare(a.PID, b.PID), cmp.Compare(a.Name, b.Name))
	})

	for _, owner := range owners {
		fmt.Fprintf(w, "%s%s%s (%spid %d%s)\n", colorGreen, owner.Name, colorReset, colorDim, owner.PID, colorReset)
		sockets := groups[owner]
		for i, r := range sockets {
			connector := "├─ "
			if i == len(sockets)-1 {
				connector = "└─ "
			}
			fmt.Fprintf(w, "  %s%s%s%s\n", colorMagenta, connector, colorReset, r.Socket())
		}
	}
}
