package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mosaicxc/relayer/relayer/supervisor"
)

// newConnectionCmd wires `connection create` (spec §6).
func newConnectionCmd(sup *supervisor.Supervisor) *cobra.Command {
	connCmd := &cobra.Command{
		Use:   "connection",
		Short: "Manage IBC connections",
	}
	connCmd.AddCommand(newConnectionCreateCmd(sup))
	return connCmd
}

func newConnectionCreateCmd(sup *supervisor.Supervisor) *cobra.Command {
	var source, target, sourceClient, targetClient string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Run the connection handshake to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" || target == "" || sourceClient == "" || targetClient == "" {
				return NewArgError("--source, --target, --sourceclient, and --targetclient are required")
			}
			conn, _, err := sup.CreateConnection(cmd.Context(), source, target, sourceClient, targetClient)
			if err != nil {
				return err
			}
			var a, b string
			if conn.SideA.ConnectionID != nil {
				a = *conn.SideA.ConnectionID
			}
			if conn.SideB.ConnectionID != nil {
				b = *conn.SideB.ConnectionID
			}
			cmd.Printf("created connection %s <-> %s\n", a, b)
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "source chain id")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target chain id")
	cmd.Flags().StringVar(&sourceClient, "sourceclient", "", "client id on the source chain")
	cmd.Flags().StringVar(&targetClient, "targetclient", "", "client id on the target chain")
	return cmd
}
