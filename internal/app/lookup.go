package app

import (
	"fmt"
	"net/netip"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/sockowner/internal/output"
	"github.com/pranshuparmar/sockowner/pkg/model"
)

type lookupResult struct {
	Socket  model.Record `json:"socket"`
	Matched bool         `json:"matched"`
}

func newLookupCmd(opts *options) *cobra.Command {
	var udp bool
	cmd := &cobra.Command{
		Use:   "lookup <ip> <port>",
		Short: "Print the process owning a local socket",
		Long: `Print the process owning a local socket. A socket bound to the wildcard
address (0.0.0.0 or ::) owns every local address on its port.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := netip.ParseAddr(args[0])
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[0], err)
			}
			// Socket tables carry no scope zone.
			ip = ip.WithZone("")
			port, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}
			proto := model.ProtocolTCP
			if udp {
				proto = model.ProtocolUDP
			}

			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			socket := model.LocalSocket{IP: ip, Port: uint16(port), Protocol: proto}
			owner, ok := e.scan().Owner(ip, uint16(port), proto)

			if e.json() {
				res := lookupResult{
					Socket:  model.Record{Protocol: proto, Address: ip, Port: uint16(port), Process: owner.Name, PID: owner.PID},
					Matched: ok,
				}
				if err := output.WriteJSON(e.stdout, res); err != nil {
					return err
				}
			} else if ok {
				output.RenderOwner(e.stdout, socket, owner, e.color)
			}
			if !ok {
				return fmt.Errorf("owner unknown for %s", socket)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&udp, "udp", "u", false, "look up a UDP socket instead of TCP")
	return cmd
}
