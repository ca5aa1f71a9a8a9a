package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/systmms/dskeyring/internal/config"
	dserrors "github.com/systmms/dskeyring/internal/errors"
	"github.com/systmms/dskeyring/internal/metrics"
	"github.com/systmms/dskeyring/pkg/backend"
	"github.com/systmms/dskeyring/pkg/keyring"
)

const doctorService = "dskeyring doctor"

// CheckResult is the outcome of one doctor check.
type CheckResult struct {
	Name    string
	Status  string // ok, error, skipped
	Message string
}

func NewDoctorCommand(rt *Runtime) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the credential store works end to end",
		Long: `Verify that dskeyring can use the selected credential store.

This command checks:
- Configuration file validity
- Backend selection and platform support
- Key store path, for backends that need one
- A full store, read, overwrite and delete round trip with a throwaway entry

Use --verbose to also print per-operation timings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			results := runDoctor(rt, metrics.NewRecorder(reg))

			out := cmd.OutOrStdout()
			displayCheckResults(out, results)
			if verbose {
				displayTimings(out, reg)
			}

			failed := 0
			for _, r := range results {
				if r.Status == "error" {
					failed++
				}
			}

			_, _ = fmt.Fprintf(out, "\nSummary: %d/%d checks passed\n", len(results)-failed, len(results))
			if failed > 0 {
				return dserrors.CommandError{
					Command:    "doctor",
					ExitCode:   1,
					Message:    fmt.Sprintf("%d check(s) failed", failed),
					Suggestion: "Run 'dskeyring backends' and try another store with --backend",
				}
			}

			rt.logger().Info("✓ Credential store is operational")
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show per-operation timings")

	return cmd
}

func runDoctor(rt *Runtime, rec *metrics.Recorder) []CheckResult {
	var results []CheckResult

	_, err := rt.settings()
	if err != nil {
		return append(results, CheckResult{Name: "configuration", Status: "error", Message: err.Error()})
	}
	results = append(results, CheckResult{Name: "configuration", Status: "ok", Message: "loaded"})

	kr, _, err := rt.openKeyring(keyring.WithRecorder(rec))
	if err != nil {
		return append(results, CheckResult{Name: "backend", Status: "error", Message: err.Error()})
	}
	results = append(results, CheckResult{Name: "backend", Status: "ok", Message: kr.BackendID().String()})

	if kr.KeyStorePathRequired() {
		check := keyStorePathCheck(kr)
		results = append(results, check)
		if check.Status == "error" {
			return results
		}
	}
	if kr.BackendID() == backend.UnencryptedMemory {
		results = append(results, CheckResult{
			Name:    "persistence",
			Status:  "ok",
			Message: "warning: secrets are kept in process memory only",
		})
	}

	account := fmt.Sprintf("probe-%d", time.Now().UnixNano())
	return append(results, roundTrip(kr, doctorService, account)...)
}

func keyStorePathCheck(kr *keyring.Keyring) CheckResult {
	path := kr.KeyStorePath()
	if path == "" {
		return CheckResult{
			Name:    "keystore path",
			Status:  "error",
			Message: fmt.Sprintf("%s requires a key store path; set --keystore-path or %s", kr.BackendID(), config.EnvKeyStorePath),
		}
	}
	return CheckResult{Name: "keystore path", Status: "ok", Message: path}
}

// roundTrip stores, reads back, overwrites and removes a throwaway entry.
func roundTrip(kr *keyring.Keyring, service, account string) []CheckResult {
	const (
		first  = "dskeyring-doctor-π"
		second = "dskeyring-doctor-2"
	)

	var results []CheckResult
	fail := func(name string, err error) []CheckResult {
		return append(results, CheckResult{Name: name, Status: "error", Message: err.Error()})
	}

	if err := kr.SetPassword(service, account, first); err != nil {
		return fail("store", err)
	}
	results = append(results, CheckResult{Name: "store", Status: "ok"})

	got, err := kr.GetPassword(service, account)
	switch {
	case err != nil:
		_ = kr.DeletePassword(service, account)
		return fail("read", err)
	case got != first:
		_ = kr.DeletePassword(service, account)
		return fail("read", errors.New("value read back differs from value stored"))
	}
	results = append(results, CheckResult{Name: "read", Status: "ok"})

	if err := kr.SetPassword(service, account, second); err != nil {
		_ = kr.DeletePassword(service, account)
		return fail("overwrite", err)
	}
	if got, err := kr.GetPassword(service, account); err != nil || got != second {
		_ = kr.DeletePassword(service, account)
		if err == nil {
			err = errors.New("overwritten value was not returned")
		}
		return fail("overwrite", err)
	}
	results = append(results, CheckResult{Name: "overwrite", Status: "ok"})

	if err := kr.DeletePassword(service, account); err != nil {
		return fail("delete", err)
	}
	if _, err := kr.GetPassword(service, account); !backend.IsNotFound(err) {
		if err == nil {
			err = errors.New("entry still readable after delete")
		}
		return fail("delete", err)
	}
	return append(results, CheckResult{Name: "delete", Status: "ok"})
}

// displayCheckResults shows check results in a formatted table
func displayCheckResults(out io.Writer, results []CheckResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t-------\n")

	for _, result := range results {
		status := result.Status
		switch result.Status {
		case "ok":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		default:
			status = "? " + status
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", result.Name, status, result.Message)
	}

	_ = w.Flush()
}

// displayTimings prints call counts and mean latency per operation.
func displayTimings(out io.Writer, gatherer prometheus.Gatherer) {
	families, err := gatherer.Gather()
	if err != nil {
		_, _ = fmt.Fprintf(out, "\nTimings unavailable: %v\n", err)
		return
	}

	type timing struct {
		operation string
		count     uint64
		mean      time.Duration
	}
	var timings []timing

	for _, mf := range families {
		if mf.GetName() != "dskeyring_operation_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var op string
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "operation" {
					op = lp.GetValue()
				}
			}
			h := m.GetHistogram()
			if h.GetSampleCount() == 0 {
				continue
			}
			mean := time.Duration(h.GetSampleSum() / float64(h.GetSampleCount()) * float64(time.Second))
			timings = append(timings, timing{operation: op, count: h.GetSampleCount(), mean: mean})
		}
	}

	sort.Slice(timings, func(i, j int) bool { return timings[i].operation < timings[j].operation })

	_, _ = fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "OPERATION\tCALLS\tMEAN\n")
	for _, t := range timings {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", t.operation, t.count, t.mean)
	}
	_ = w.Flush()
}
