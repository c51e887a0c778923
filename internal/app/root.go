package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranshuparmar/sockowner/internal/config"
	"github.com/pranshuparmar/sockowner/internal/logging"
	"github.com/pranshuparmar/sockowner/internal/output"
	"github.com/pranshuparmar/sockowner/internal/pipeline"
	"github.com/pranshuparmar/sockowner/internal/proc"
	"github.com/pranshuparmar/sockowner/pkg/model"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

func SetVersionBuildCommitString(v, c, d string) {
	version, commit, buildDate = v, c, d
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	procRoot   string
	allSockets bool
	jsonOutput bool
	color      string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "sockowner",
		Short: "Show which process owns each open TCP/UDP socket",
		Long: `sockowner scans every process on a Linux host and maps each local socket
(address, port, protocol) to the process holding it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts, listOptions{})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a TOML config file")
	flags.StringVar(&opts.procRoot, "proc-root", "", "procfs mount point (default /proc)")
	flags.BoolVar(&opts.allSockets, "all-sockets", false, "report every socket in a process's network namespace, not only the ones it holds")
	flags.BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")
	flags.StringVar(&opts.color, "color", "", "color output: auto, always or never")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newLookupCmd(opts))
	root.AddCommand(newAttributeCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// env carries everything a subcommand needs after config and flags are merged.
type env struct {
	cfg    config.Config
	log    *zap.Logger
	stdout io.Writer
	color  bool
}

func (o *options) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("proc-root") {
		cfg.ProcRoot = o.procRoot
	}
	if flags.Changed("all-sockets") {
		cfg.OwnedOnly = !o.allSockets
	}
	if flags.Changed("json") {
		cfg.Format = "table"
		if o.jsonOutput {
			cfg.Format = "json"
		}
	}
	if flags.Changed("color") {
		cfg.Color = o.color
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	stdout := cmd.OutOrStdout()
	return &env{
		cfg:    cfg,
		log:    log,
		stdout: stdout,
		color:  output.ColorEnabled(cfg.Color, stdout),
	}, nil
}

func (e *env) scan() model.OpenSockets {
	table := proc.NewTable(proc.Options{Root: e.cfg.ProcRoot, OwnedOnly: e.cfg.OwnedOnly})
	return pipeline.OpenSockets(pipeline.ScanConfig{Table: table, Logger: e.log})
}

func (e *env) json() bool {
	return e.cfg.Format == "json"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sockowner %s", v)
			if commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", commit)
			}
			if buildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " built %s", buildDate)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}
