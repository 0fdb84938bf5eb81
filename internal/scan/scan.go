package scan

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/probeworks/netsweep/internal/errors"
	"github.com/probeworks/netsweep/internal/logging"
	"github.com/probeworks/netsweep/internal/metrics"
	"github.com/probeworks/netsweep/internal/portspec"
	"github.com/probeworks/netsweep/internal/probe"
	"github.com/probeworks/netsweep/internal/target"
)

// Mode selects what a scan run probes for.
type Mode string

const (
	// ModeLiveness checks each target host for ICMP reachability.
	ModeLiveness Mode = "liveness"
	// ModePortScan probes each (host, port) pair for port state.
	ModePortScan Mode = "portscan"
)

// Severity categorizes scan events for presentation.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Event is a presentable scan occurrence: a probe result or a
// diagnostic raised while preparing or running the scan.
type Event struct {
	Severity Severity
	Message  string
	Result   *probe.Result
}

// Config describes a scan run.
type Config struct {
	// Targets is the target expression to expand.
	Targets string
	// Ports holds the raw port tokens. An empty list selects liveness
	// mode; a non-empty list selects port-scan mode.
	Ports []string
	// Protocol is the port probe protocol, TCP when unset. Ignored in
	// liveness mode.
	Protocol probe.Protocol
	// Timeout bounds each individual probe.
	Timeout time.Duration
	// Workers is the number of concurrent probes.
	Workers int
	// Privileged selects raw-socket ICMP for liveness probes.
	Privileged bool
}

// Mode returns the scan mode the configuration selects.
func (c Config) Mode() Mode {
	if len(c.Ports) == 0 {
		return ModeLiveness
	}
	return ModePortScan
}

// Stats summarizes the verdicts of a completed run.
type Stats struct {
	Hosts   int
	Probes  int
	Alive   int
	Down    int
	Open    int
	Closed  int
	Unknown int
}

// Report is the aggregated outcome of a scan run. Results are ordered
// by address and then by port regardless of completion order.
type Report struct {
	RunID    uuid.UUID
	Mode     Mode
	Targets  string
	Warnings []string
	Results  []probe.Result
	Stats    Stats
	Duration time.Duration
}

// Events flattens the report into severity-tagged events: one warning
// per diagnostic followed by one info event per result.
func (r *Report) Events() []Event {
	events := make([]Event, 0, len(r.Warnings)+len(r.Results))
	for _, w := range r.Warnings {
		events = append(events, Event{Severity: SeverityWarning, Message: w})
	}
	for i := range r.Results {
		res := &r.Results[i]
		events = append(events, Event{
			Severity: SeverityInfo,
			Message:  res.String(),
			Result:   res,
		})
	}
	return events
}

// Runner executes scans for a validated configuration.
type Runner struct {
	cfg      Config
	expr     *target.Expression
	ports    []int
	rejected []string
	prober   *probe.Prober
	log      *logging.Logger
}

// NewRunner validates the configuration and prepares a scan. Usage
// errors (an unparseable target expression, or a UDP scan whose port
// specification yields no valid port) are reported here, before any
// probe is sent.
func NewRunner(cfg Config) (*Runner, error) {
	expr, err := target.Parse(cfg.Targets)
	if err != nil {
		return nil, err
	}

	if cfg.Protocol == "" {
		cfg.Protocol = probe.TCP
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultPoolConfig().Size
	}

	ports, rejected := portspec.Parse(cfg.Ports)

	// UDP without a valid port to probe is a usage error, never a
	// silent fall back to a liveness sweep.
	if cfg.Protocol == probe.UDP && len(ports) == 0 {
		if len(cfg.Ports) > 0 {
			return nil, errors.ErrNoValidPorts()
		}
		return nil, errors.ErrUDPWithoutPorts()
	}

	return &Runner{
		cfg:      cfg,
		expr:     expr,
		ports:    ports,
		rejected: rejected,
		prober: probe.New(
			probe.WithTimeout(cfg.Timeout),
			probe.WithPrivileged(cfg.Privileged),
		),
		log: logging.Default().WithComponent("scan"),
	}, nil
}

// Mode returns the mode the runner will execute in.
func (r *Runner) Mode() Mode {
	return r.cfg.Mode()
}

// Run executes the scan and aggregates its results. Individual probe
// failures are verdicts, never errors; Run only fails when the whole
// run is aborted through the context.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.New(),
		Mode:    r.cfg.Mode(),
		Targets: r.cfg.Targets,
	}

	if len(r.rejected) > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"ignoring invalid port tokens: %s", strings.Join(r.rejected, ", ")))
	}

	log := r.log.WithRunID(report.RunID.String()).WithTarget(r.cfg.Targets)
	log.Info("scan started",
		"mode", string(report.Mode),
		"hosts", r.expr.Count(),
		"ports", len(r.ports),
		"workers", r.cfg.Workers)

	start := time.Now()

	pool := NewPool(ctx, PoolConfig{Size: r.cfg.Workers})
	pool.Start()

	submitErr := make(chan error, 1)
	go func() {
		submitErr <- r.produce(pool)
	}()

	for result := range pool.Results() {
		report.Results = append(report.Results, result)
	}

	err := <-submitErr
	report.Duration = time.Since(start)
	metrics.RecordScanDuration(string(report.Mode), report.Duration)

	if err != nil {
		pool.Stop()
		metrics.IncrementScanTotal(string(report.Mode), "aborted")
		log.WithError(err).Error("scan aborted")
		return nil, errors.WrapScanError(errors.CodeCanceled, "scan aborted", err)
	}

	sortResults(report.Results)
	report.Stats = tally(report.Mode, r.expr.Count(), report.Results)

	metrics.IncrementScanTotal(string(report.Mode), "completed")
	metrics.Gauge(metrics.MetricHostsScanned, float64(report.Stats.Hosts), nil)
	metrics.Gauge(metrics.MetricPortsScanned, float64(len(r.ports)), nil)

	log.Info("scan completed",
		"duration", report.Duration,
		"probes", report.Stats.Probes,
		"alive", report.Stats.Alive,
		"open", report.Stats.Open)
	return report, nil
}

// produce submits one job per probe pair, walking the address sequence
// lazily so large target spaces never sit in memory. It closes the pool
// when the sequence is exhausted.
func (r *Runner) produce(pool *Pool) error {
	defer pool.Close()

	var submitErr error
	r.expr.Each(func(addr string) bool {
		if r.cfg.Mode() == ModeLiveness {
			submitErr = pool.Submit(&livenessJob{prober: r.prober, address: addr})
			return submitErr == nil
		}
		for _, port := range r.ports {
			submitErr = pool.Submit(&portJob{
				prober:   r.prober,
				address:  addr,
				port:     port,
				protocol: r.cfg.Protocol,
			})
			if submitErr != nil {
				return false
			}
		}
		return true
	})
	return submitErr
}

// livenessJob probes a single host for ICMP reachability.
type livenessJob struct {
	prober  *probe.Prober
	address string
}

func (j *livenessJob) Execute(ctx context.Context) probe.Result {
	return j.prober.Liveness(ctx, j.address)
}

func (j *livenessJob) ID() string   { return j.address }
func (j *livenessJob) Type() string { return string(ModeLiveness) }

// portJob probes a single (host, port) pair.
type portJob struct {
	prober   *probe.Prober
	address  string
	port     int
	protocol probe.Protocol
}

func (j *portJob) Execute(ctx context.Context) probe.Result {
	return j.prober.Port(ctx, j.address, j.port, j.protocol)
}

func (j *portJob) ID() string   { return fmt.Sprintf("%s:%d", j.address, j.port) }
func (j *portJob) Type() string { return string(ModePortScan) }

// sortResults orders results by address and then by port. IPv4
// addresses sort by their integer value; hostnames sort after addresses
// in plain string order.
func sortResults(results []probe.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		ai, aerr := target.AddrToInt(results[i].Address)
		bi, berr := target.AddrToInt(results[j].Address)

		switch {
		case aerr == nil && berr == nil:
			if ai != bi {
				return ai < bi
			}
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			if results[i].Address != results[j].Address {
				return results[i].Address < results[j].Address
			}
		}
		return results[i].Port < results[j].Port
	})
}

// tally summarizes verdict counts for the report.
func tally(mode Mode, hosts int, results []probe.Result) Stats {
	stats := Stats{Hosts: hosts, Probes: len(results)}
	for _, res := range results {
		switch res.Verdict {
		case probe.VerdictAlive:
			stats.Alive++
		case probe.VerdictDown:
			stats.Down++
		case probe.VerdictOpen:
			stats.Open++
		case probe.VerdictClosed:
			stats.Closed++
		case probe.VerdictUnknown:
			stats.Unknown++
		}
	}
	return stats
}
