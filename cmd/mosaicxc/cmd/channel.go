package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mosaicxc/relayer/relayer/supervisor"
)

// newChannelCmd wires `channel create` (spec §6).
func newChannelCmd(sup *supervisor.Supervisor) *cobra.Command {
	channelCmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage IBC channels",
	}
	channelCmd.AddCommand(newChannelCreateCmd(sup))
	return channelCmd
}

func newChannelCreateCmd(sup *supervisor.Supervisor) *cobra.Command {
	var source, target string
	var sourceClient, targetClient string
	var sourceConn, targetConn string
	var sourcePort, targetPort string
	var sourceVersion, targetVersion string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Run the channel handshake to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" || target == "" {
				return NewArgError("--source and --target are required")
			}
			if sourceConn == "" || targetConn == "" || sourcePort == "" || targetPort == "" {
				return NewArgError("--sourceconn, --targetconn, --sourceport, and --targetport are required")
			}

			sourceParams := supervisor.ChannelParams{
				ChainID:      source,
				ClientID:     sourceClient,
				ConnectionID: sourceConn,
				PortID:       sourcePort,
				Version:      sourceVersion,
			}
			targetParams := supervisor.ChannelParams{
				ChainID:      target,
				ClientID:     targetClient,
				ConnectionID: targetConn,
				PortID:       targetPort,
				Version:      targetVersion,
			}

			ch, _, err := sup.CreateChannel(cmd.Context(), sourceParams, targetParams)
			if err != nil {
				return err
			}
			var a, b string
			if ch.SideA.ChannelID != nil {
				a = *ch.SideA.ChannelID
			}
			if ch.SideB.ChannelID != nil {
				b = *ch.SideB.ChannelID
			}
			cmd.Printf("created channel %s <-> %s\n", a, b)
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source chain id")
	cmd.Flags().StringVarP(&target, "target", "t", "", "target chain id")
	cmd.Flags().StringVar(&sourceClient, "sourceclient", "", "client id on the source chain")
	cmd.Flags().StringVar(&targetClient, "targetclient", "", "client id on the target chain")
	cmd.Flags().StringVar(&sourceConn, "sourceconn", "", "connection id on the source chain")
	cmd.Flags().StringVar(&targetConn, "targetconn", "", "connection id on the target chain")
	cmd.Flags().StringVar(&sourcePort, "sourceport", "", "port id on the source chain")
	cmd.Flags().StringVar(&targetPort, "targetport", "", "port id on the target chain")
	cmd.Flags().StringVar(&sourceVersion, "sourceversion", "ics20-1", "channel version proposed by the source chain")
	cmd.Flags().StringVar(&targetVersion, "targetversion", "ics20-1", "channel version proposed by the target chain")
	return cmd
}
