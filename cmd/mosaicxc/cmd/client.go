package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mosaicxc/relayer/relayer/supervisor"
)

// newClientCmd wires `client create` (spec §6).
func newClientCmd(sup *supervisor.Supervisor) *cobra.Command {
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Manage IBC light clients",
	}
	clientCmd.AddCommand(newClientCreateCmd(sup))
	return clientCmd
}

func newClientCreateCmd(sup *supervisor.Supervisor) *cobra.Command {
	var source, target, clientType string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a light client of target on source",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" || target == "" {
				return NewArgError("--source and --target are required")
			}
			clientID, _, err := sup.CreateClient(cmd.Context(), source, target, clientType)
			if err != nil {
				return err
			}
			cmd.Printf("created client %s\n", clientID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "chain the client is created on")
	cmd.Flags().StringVarP(&target, "target", "t", "", "chain the client tracks")
	cmd.Flags().StringVar(&clientType, "clienttype", "tendermint", "client type: tendermint or aggrelite")
	return cmd
}
