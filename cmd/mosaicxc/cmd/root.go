// Package cmd implements the mosaicxc CLI surface of spec §6, grounded
// on the teacher's cobra wiring (cmd/txd/main.go's NewRootCmd /
// cmd/txd/cosmoscmd/migrate_keyring.go's subcommand style: Use/Short/
// RunE, cmd.Printf for output, errors wrapped rather than panicked).
package cmd

import (
	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/mosaicxc/relayer/relayer/supervisor"
)

// defaultGroupSize is the clustering engine's `G` (spec §4.6: "a
// maximum group size G ≥ 2"). Every registered chain's dispatcher uses
// it; chain configs carry no setting of their own for it.
const defaultGroupSize = 8

// ArgError marks a CLI-level validation failure — unknown flag value,
// missing required combination — as distinct from a runtime failure,
// so main.go can map it to exit code 1 rather than 2 (spec §6: "Exit
// codes: 0 success, 1 argument error, 2 runtime error").
type ArgError struct{ msg string }

func (e *ArgError) Error() string { return e.msg }

// NewArgError builds an ArgError with the given message.
func NewArgError(msg string) error { return &ArgError{msg: msg} }

// NewRootCmd builds the mosaicxc root command, wiring one shared
// supervisor across every subcommand (spec §4.8: the supervisor is
// the single owner of registered chains, the channel pool, and
// completed_txs).
func NewRootCmd(logger log.Logger) *cobra.Command {
	sup := supervisor.New(defaultGroupSize, logger)

	root := &cobra.Command{
		Use:           "mosaicxc",
		Short:         "Cross-chain IBC aggregating relayer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// cobra's own flag-parsing failures (unknown flag, bad value) are
	// argument errors in spec §6's sense just as much as the ArgErrors
	// returned by RunE below, so they get the same exit code.
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return NewArgError(err.Error())
	})

	root.AddCommand(
		newChainCmd(sup),
		newClientCmd(sup),
		newConnectionCmd(sup),
		newChannelCmd(sup),
		newAggregatorCmd(sup),
	)
	return root
}
