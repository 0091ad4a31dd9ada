package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/restcall/packages/bench"
	"github.com/abdul-hamid-achik/restcall/packages/rest"
)

var (
	benchFileFlag     string
	benchRateFlag     float64
	benchDurationFlag time.Duration
	benchWorkersFlag  int
	benchTestFlag     bool
)

var benchCmd = &cobra.Command{
	Use:   "bench [endpoint]",
	Short: "Benchmark a single API call",
	Long: `Issue the same call repeatedly at a fixed rate and report latency
percentiles.

Examples:
  restcall bench /v1/widgets --base api.example.com --rate 50 --duration 10s
  restcall bench -f widget.yaml --rate 100 --workers 4`,
	Args: cobra.MaximumNArgs(1),
	RunE: benchCommand,
}

func init() {
	benchCmd.Flags().StringVarP(&benchFileFlag, "file", "f", "", "YAML request file")
	benchCmd.Flags().StringVarP(&callBaseFlag, "base", "b", "", "Base URL host, no scheme")
	benchCmd.Flags().StringVarP(&callMethodFlag, "method", "X", "", "HTTP method (default GET)")
	benchCmd.Flags().Float64Var(&benchRateFlag, "rate", 10, "Calls per second (0 for unpaced)")
	benchCmd.Flags().DurationVar(&benchDurationFlag, "duration", 10*time.Second, "How long to run")
	benchCmd.Flags().IntVar(&benchWorkersFlag, "workers", 1, "Concurrent callers")
	benchCmd.Flags().BoolVar(&benchTestFlag, "test", false, "Use http instead of https")
}

func benchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	callFileFlag = benchFileFlag
	req, err := buildCallRequest(cfg, args)
	if err != nil {
		return err
	}

	client := rest.NewClient(rest.WithTest(benchTestFlag || cfg.GetTest()))
	defer client.Close()

	runner := bench.NewRunner(client, bench.Config{
		Rate:     benchRateFlag,
		Duration: benchDurationFlag,
		Workers:  benchWorkersFlag,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "Benchmarking %s %s%s for %s...\n",
		req.Method, req.BaseURL, req.Endpoint, benchDurationFlag)

	summary, err := runner.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nCalls:   %d (%.1f/s)\n", summary.Total, summary.RPS)
	fmt.Fprintf(out, "Errors:  %d\n", summary.Errors)
	if summary.Empties > 0 {
		fmt.Fprintf(out, "Empty:   %d\n", summary.Empties)
	}
	fmt.Fprintf(out, "Latency: p50=%s p95=%s p99=%s max=%s\n",
		summary.P50, summary.P95, summary.P99, summary.Max)
	return nil
}
