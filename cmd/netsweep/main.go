// Command netsweep is a lightweight network scanner: it expands target
// expressions, checks host liveness with ICMP, and probes TCP or UDP
// ports with bounded timeouts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/probeworks/netsweep/cmd/cli"
)

// Build information set by ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
