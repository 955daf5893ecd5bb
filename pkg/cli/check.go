package cli

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kylerisse/hostalive/pkg/config"
	"github.com/kylerisse/hostalive/pkg/poller"
)

func setupCheckCommand(args *Args) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "ping every configured host once and print the results without writing to InfluxDB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, as []string) error {
			logger := newLogger(args.Debug, cmd.ErrOrStderr())

			cfg, err := config.Load(args.Configuration)
			if err != nil {
				return err
			}
			targets, err := buildTargets(cfg)
			if err != nil {
				return err
			}

			results := poller.ProbeAll(cmd.Context(), targets, logger)
			_, err = fmt.Fprint(cmd.OutOrStdout(), resultsTable(results))
			return err
		},
	}
}

// resultsTable renders one row per probed host, in configuration order.
func resultsTable(results []poller.ProbeResult) string {
	str := &strings.Builder{}
	table := tablewriter.NewWriter(str)
	table.SetHeader([]string{"Name", "Address", "Alive", "Value", "Latency"})
	table.SetAutoWrapText(false)

	for _, r := range results {
		alive := "no"
		if r.Alive() {
			alive = "yes"
		}
		latency := "-"
		if us, ok := r.Result.Metrics["latency_us"]; ok {
			latency = fmt.Sprintf("%.3f ms", us/1000)
		}
		table.Append([]string{r.Host.Name, r.Host.Target(), alive, fmt.Sprintf("%d", r.Result.Value()), latency})
	}

	table.Render()
	return str.String()
}
