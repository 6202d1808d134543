package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mosaicxc/relayer/relayer/dispatch"
	"github.com/mosaicxc/relayer/relayer/supervisor"
)

// newAggregatorCmd wires `aggregator start` / `aggregator
// querytotalgas` (spec §6).
func newAggregatorCmd(sup *supervisor.Supervisor) *cobra.Command {
	aggCmd := &cobra.Command{
		Use:   "aggregator",
		Short: "Run and inspect the aggregate dispatcher",
	}
	aggCmd.AddCommand(newAggregatorStartCmd(sup), newAggregatorQueryTotalGasCmd(sup))
	return aggCmd
}

func newAggregatorStartCmd(sup *supervisor.Supervisor) *cobra.Command {
	var mode string
	var gtype int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start every registered chain's event pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != supervisor.ModeAggregate && mode != supervisor.ModePassthrough {
				return NewArgError("--mode must be mosaicxc or cosmosibc")
			}
			groupingType, err := parseGroupingType(gtype)
			if err != nil {
				return err
			}
			if err := sup.Start(cmd.Context(), mode, groupingType); err != nil {
				return err
			}
			cmd.Println("pipelines started")
			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", supervisor.ModeAggregate, "dispatch mode: mosaicxc (aggregate) or cosmosibc (passthrough)")
	cmd.Flags().IntVar(&gtype, "gtype", 2, "grouping type: 0=non-grouping, 1=random, 2=cluster")
	return cmd
}

// parseGroupingType maps the CLI's `--gtype 0|1|2` onto the
// dispatcher's GroupingType (spec §6).
func parseGroupingType(gtype int) (dispatch.GroupingType, error) {
	switch gtype {
	case 0:
		return dispatch.NonGrouping, nil
	case 1:
		return dispatch.Random, nil
	case 2:
		return dispatch.ClusterGrouping, nil
	default:
		return 0, NewArgError("--gtype must be 0, 1, or 2")
	}
}

func newAggregatorQueryTotalGasCmd(sup *supervisor.Supervisor) *cobra.Command {
	return &cobra.Command{
		Use:   "querytotalgas",
		Short: "Report the number of completed submissions and their total gas",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, totalGas := sup.QueryCompletedTxsCountsAndTotalGas()
			cmd.Printf("completed_txs=%d total_gas=%d\n", count, totalGas)
			return nil
		},
	}
}
