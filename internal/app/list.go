package app

import (
	"github.com/spf13/cobra"

	"github.com/pranshuparmar/sockowner/internal/output"
	"github.com/pranshuparmar/sockowner/internal/target"
	"github.com/pranshuparmar/sockowner/pkg/model"
)

type listOptions struct {
	process string
	exact   bool
	tcp     bool
	udp     bool
	tree    bool
}

func newListCmd(opts *options) *cobra.Command {
	lf := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open sockets and their owning processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, lf)
		},
	}
	cmd.Flags().StringVarP(&lf.process, "process", "p", "", "only sockets of processes matching this name (fuzzy) or pid")
	cmd.Flags().BoolVar(&lf.exact, "exact", false, "match --process exactly instead of fuzzily")
	cmd.Flags().BoolVarP(&lf.tcp, "tcp", "t", false, "only TCP sockets")
	cmd.Flags().BoolVarP(&lf.udp, "udp", "u", false, "only UDP sockets")
	cmd.Flags().BoolVar(&lf.tree, "tree", false, "group sockets under their process")
	return cmd
}

func runList(cmd *cobra.Command, opts *options, lf listOptions) error {
	e, err := opts.setup(cmd)
	if err != nil {
		return err
	}

	var protos []model.Protocol
	if lf.tcp {
		protos = append(protos, model.ProtocolTCP)
	}
	if lf.udp {
		protos = append(protos, model.ProtocolUDP)
	}

	records := e.scan().Records()
	records = target.Protocols(records, protos...)
	records = target.Match(records, lf.process, lf.exact)

	switch {
	case e.json():
		if records == nil {
			records = []model.Record{}
		}
		return output.WriteJSON(e.stdout, records)
	case lf.tree:
		output.PrintTree(e.stdout, records, e.color)
		return nil
	default:
		return output.RenderTable(e.stdout, records, e.color)
	}
}
