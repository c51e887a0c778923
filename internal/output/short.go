package output

import (
	"fmt"
	"io"

	"github.com/pranshuparmar/sockowner/pkg/model"
)

var (
	colorResetShort   = "\033[0m"
	colorMagentaShort = "\033[35m"
	colorDimShort     = "\033[2m"
	colorGreenShort   = "\033[32m"
)

// RenderOwner prints "socket → name (pid N)" for a single lookup.
func RenderOwner(w io.Writer, s model.LocalSocket, p model.ProcessInfo, colorEnabled bool) {
	if !colorEnabled {
		fmt.Fprintf(w, "%s → %s (pid %d)\n", s, p.Name, p.PID)
		return
	}
	fmt.Fprintf(w, "%s%s →%s %s%s%s (%spid %d%s)\n",
		s, colorMagentaShort, colorResetShort,
		colorGreenShort, p.Name, colorResetShort,
		colorDimShort, p.PID, colorResetShort)
}
