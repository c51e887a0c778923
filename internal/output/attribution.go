package output

import (
	"fmt"
	"io"

	"github.com/pranshuparmar/sockowner/internal/capture"
)

const timestampLayout = "15:04:05.000000"

// RenderAttributions prints one row per packet; "-" marks an unknown owner.
func RenderAttributions(w io.Writer, attrs []capture.Attribution, colorEnabled bool) error {
	rows := make([][]string, 0, len(attrs))
	for _, a := range attrs {
		owner := "-"
		if a.Owner != nil {
			owner = a.Owner.String()
		}
		rows = append(rows, []string{
			fmt.Sprint(a.Packet),
			a.Timestamp.UTC().Format(timestampLayout),
			a.Protocol.String(),
			a.Src.String(),
			a.Dst.String(),
			owner,
		})
	}
	return writeTable(w, []string{"#", "TIME", "PROTO", "SOURCE", "DESTINATION", "OWNER"}, rows, colorEnabled)
}
