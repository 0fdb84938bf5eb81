package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/probeworks/netsweep/internal/output"
	"github.com/probeworks/netsweep/internal/scan"
)

var (
	discoverTargets    string
	discoverTimeout    time.Duration
	discoverWorkers    int
	discoverPrivileged bool
	discoverTable      bool
)

// discoverCmd represents the discover command.
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Check which hosts are alive",
	Long: `Check each target host for liveness with a single ICMP echo
request. A host that replies before the timeout is alive; anything
else, including hosts silently dropping ICMP, is reported down.

Liveness probes use unprivileged ICMP sockets by default, which on
Linux requires the net.ipv4.ping_group_range sysctl to cover the
current group. Use --privileged to switch to raw sockets (requires
root or CAP_NET_RAW).`,
	Example: `  netsweep discover --targets 192.168.1.0/24
  netsweep discover --targets "10.0.0.1-10.0.0.50,server.local"
  netsweep discover --targets 172.16.0.0/16 --workers 128 --privileged`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	addRunFlags(discoverCmd.Flags(), &discoverTargets, &discoverTimeout, &discoverWorkers, &discoverTable)
	discoverCmd.Flags().BoolVar(&discoverPrivileged, "privileged", false, "Use raw-socket ICMP (requires root or CAP_NET_RAW)")

	_ = discoverCmd.MarkFlagRequired("targets")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	timeout := discoverTimeout
	if timeout == 0 {
		timeout = cfg.Scanning.ProbeTimeout
	}
	workers := discoverWorkers
	if workers == 0 {
		workers = cfg.Scanning.Workers
	}

	runner, err := scan.NewRunner(scan.Config{
		Targets:    discoverTargets,
		Timeout:    timeout,
		Workers:    workers,
		Privileged: discoverPrivileged || cfg.Scanning.Privileged,
	})
	if err != nil {
		return err
	}

	report, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	renderer := output.NewRenderer(os.Stdout)
	if discoverTable {
		renderer.Table(report)
	} else {
		renderer.Events(report)
	}
	return nil
}
