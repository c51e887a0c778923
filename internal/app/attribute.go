package app

import (
	"github.com/spf13/cobra"

	"github.com/pranshuparmar/sockowner/internal/capture"
	"github.com/pranshuparmar/sockowner/internal/output"
)

func newAttributeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "attribute <file.pcap>",
		Short: "Attribute each packet of a capture file to the local process owning it",
		Long: `Scan the host once, then read a pcap capture and print, for every TCP or UDP
packet, the process owning its local endpoint. Sockets that closed before the
scan cannot be attributed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			attrs, err := capture.ReadFile(args[0], e.scan())
			if err != nil {
				return err
			}
			if e.json() {
				if attrs == nil {
					attrs = []capture.Attribution{}
				}
				return output.WriteJSON(e.stdout, attrs)
			}
			return output.RenderAttributions(e.stdout, attrs, e.color)
		},
	}
}
