package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mosaicxc/relayer/relayer/supervisor"
)

// newChainCmd wires `chain register` / `chain queryall` (spec §6).
func newChainCmd(sup *supervisor.Supervisor) *cobra.Command {
	chainCmd := &cobra.Command{
		Use:   "chain",
		Short: "Manage registered chains",
	}
	chainCmd.AddCommand(newChainRegisterCmd(sup), newChainQueryAllCmd(sup))
	return chainCmd
}

func newChainRegisterCmd(sup *supervisor.Supervisor) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a chain from its config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				return NewArgError("--config is required")
			}
			chainID, err := sup.RegisterChain(cfgPath)
			if err != nil {
				return err
			}
			cmd.Printf("registered chain %s\n", chainID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to the chain config file")
	return cmd
}

func newChainQueryAllCmd(sup *supervisor.Supervisor) *cobra.Command {
	return &cobra.Command{
		Use:   "queryall",
		Short: "List every registered chain id",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range sup.QueryAllChainIDs() {
				cmd.Println(id)
			}
			return nil
		},
	}
}
