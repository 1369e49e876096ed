package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taurusgroup/mental-poker/internal/table"
	"github.com/taurusgroup/mental-poker/pkg/wire"
)

func newCardsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Print the game parameters and the encoding of every card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, err := groupFlag(v)
			if err != nil {
				return err
			}
			a, err := wire.New(group, v.GetInt(flagCards))
			if err != nil {
				return err
			}
			params, err := a.Parameters()
			if err != nil {
				return err
			}
			cards, err := a.Cards()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "parameters %s\n", hex.EncodeToString(params))
			for i, card := range cards {
				fmt.Fprintf(out, "%4d %-4s %s\n", i, table.Label(len(cards), i), hex.EncodeToString(card))
			}
			return nil
		},
	}
	addGameFlags(cmd)
	return cmd
}
