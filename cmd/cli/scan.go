package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/probeworks/netsweep/internal/output"
	"github.com/probeworks/netsweep/internal/portspec"
	"github.com/probeworks/netsweep/internal/probe"
	"github.com/probeworks/netsweep/internal/scan"
)

var (
	scanTargets string
	scanPorts   string
	scanUDP     bool
	scanTimeout time.Duration
	scanWorkers int
	scanTable   bool
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Probe targets for open ports",
	Long: `Probe each target for port state. Targets are expanded from the
expression given with --targets; ports come from --ports or the
configured default set.

TCP probes report open or closed. UDP probes additionally report
open|filtered when the peer stays silent, since a silent peer cannot
be told apart from a filtered one. A UDP scan with no valid port to
probe is rejected before any traffic is sent.`,
	Example: `  netsweep scan --targets 192.168.1.0/24
  netsweep scan --targets "192.168.1.1,192.168.1.10-20" --ports "22,80,443"
  netsweep scan --targets 10.0.0.5 --ports "1-1024" --timeout 500ms
  netsweep scan --targets 192.168.1.1 --ports "53,123" --udp`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	addRunFlags(scanCmd.Flags(), &scanTargets, &scanTimeout, &scanWorkers, &scanTable)
	scanCmd.Flags().StringVar(&scanPorts, "ports", "", "Port specification: '80,443' or '1-1024' (default from config)")
	scanCmd.Flags().BoolVar(&scanUDP, "udp", false, "Probe with UDP instead of TCP")

	_ = scanCmd.MarkFlagRequired("targets")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ports := scanPorts
	if ports == "" {
		ports = cfg.Scanning.DefaultPorts
	}
	protocol := probe.Protocol(cfg.Scanning.Protocol)
	if scanUDP {
		protocol = probe.UDP
	}
	timeout := scanTimeout
	if timeout == 0 {
		timeout = cfg.Scanning.ProbeTimeout
	}
	workers := scanWorkers
	if workers == 0 {
		workers = cfg.Scanning.Workers
	}

	runner, err := scan.NewRunner(scan.Config{
		Targets:    scanTargets,
		Ports:      portspec.Tokenize(ports),
		Protocol:   protocol,
		Timeout:    timeout,
		Workers:    workers,
		Privileged: cfg.Scanning.Privileged,
	})
	if err != nil {
		return err
	}

	report, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	renderer := output.NewRenderer(os.Stdout)
	if scanTable {
		renderer.Table(report)
	} else {
		renderer.Events(report)
	}
	return nil
}
