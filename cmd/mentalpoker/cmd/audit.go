package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taurusgroup/mental-poker/internal/table"
	"github.com/taurusgroup/mental-poker/internal/transcript"
	"github.com/taurusgroup/mental-poker/pkg/wire"
)

const (
	flagTranscript = "transcript"
	flagBackend    = "db-backend"
)

func newAuditCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [hand...]",
		Short: "Check recorded hands and print their board",
		Long: `Check recorded hands and print their board.

Every key, the shuffles and the board reveal tokens of a hand are verified
again from its transcript. Without arguments, every hand in the transcript
directory is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v.GetString(flagTranscript) == "" {
				return fmt.Errorf("--%s is required", flagTranscript)
			}
			store, err := openTranscript(v)
			if err != nil {
				return err
			}
			defer store.Close()

			var hands []uuid.UUID
			for _, arg := range args {
				hand, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid hand %q: %w", arg, err)
				}
				hands = append(hands, hand)
			}
			if len(args) == 0 {
				if hands, err = store.Hands(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, hand := range hands {
				header, err := store.Header(hand)
				if err != nil {
					return err
				}
				board, err := table.Audit(store, hand)
				if err != nil {
					return fmt.Errorf("hand %s: %w", hand, err)
				}
				a, err := wire.FromParameters(header.Parameters)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s ok %s\n", hand, labels(a.Engine().Size(), board))
			}
			return nil
		},
	}
	addTranscriptFlags(cmd)
	return cmd
}

func addTranscriptFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagTranscript, "", "directory of the transcript database")
	cmd.Flags().String(flagBackend, "goleveldb", "transcript database backend")
}

func openTranscript(v *viper.Viper) (*transcript.Store, error) {
	return transcript.Open(v.GetString(flagBackend), v.GetString(flagTranscript))
}
