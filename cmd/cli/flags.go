package cli

import (
	"time"

	"github.com/spf13/pflag"
)

// addRunFlags registers the flags shared by the scan and discover
// commands: the target expression, probe timing, and output shape.
func addRunFlags(fs *pflag.FlagSet, targets *string, timeout *time.Duration, workers *int, table *bool) {
	fs.StringVar(targets, "targets", "", "Target expression: addresses, dash ranges, CIDR blocks (comma-separated)")
	fs.DurationVar(timeout, "timeout", 0, "Per-probe timeout (default from config)")
	fs.IntVar(workers, "workers", 0, "Number of concurrent probes (default from config)")
	fs.BoolVar(table, "table", false, "Render results as a table instead of event lines")
}
