package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taurusgroup/mental-poker/internal/table"
	"github.com/taurusgroup/mental-poker/pkg/party"
)

const (
	flagPlayers   = "players"
	flagHoleCards = "hole-cards"
	flagBoard     = "board"
	flagSeed      = "seed"
	flagWorkers   = "workers"
)

func newPlayCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one hand between in-process players",
		Long: `Play one hand between in-process players.

Every player generates a key and proves ownership of it, the deck is shuffled
once by each player and checked by all others, then hole cards are opened to
their owner only and the board to everyone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(v, cmd)
			if err != nil {
				return err
			}
			group, err := groupFlag(v)
			if err != nil {
				return err
			}
			var seed []byte
			if s := v.GetString(flagSeed); s != "" {
				if seed, err = hex.DecodeString(s); err != nil {
					return fmt.Errorf("invalid %s: %w", flagSeed, err)
				}
			}
			var players []party.ID
			for _, id := range v.GetStringSlice(flagPlayers) {
				players = append(players, party.ID(strings.TrimSpace(id)))
			}

			cfg := table.Config{
				Group:     group,
				Cards:     v.GetInt(flagCards),
				Players:   players,
				HoleCards: v.GetInt(flagHoleCards),
				Board:     v.GetInt(flagBoard),
				Seed:      seed,
				Workers:   v.GetInt(flagWorkers),
				Logger:    logger,
			}
			if v.GetString(flagTranscript) != "" {
				store, err := openTranscript(v)
				if err != nil {
					return err
				}
				defer store.Close()
				cfg.Transcript = store
			}
			res, err := table.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return printResult(cmd, cfg, res)
		},
	}
	addGameFlags(cmd)
	addTranscriptFlags(cmd)
	cmd.Flags().StringSlice(flagPlayers, []string{"alice", "bob", "carol"}, "player IDs")
	cmd.Flags().Int(flagHoleCards, 2, "cards dealt face down to each player")
	cmd.Flags().Int(flagBoard, 5, "cards opened to everyone")
	cmd.Flags().String(flagSeed, "", "hex seed of at least 32 bytes, for a reproducible hand")
	cmd.Flags().Int(flagWorkers, 0, "workers per player, 0 for one per CPU")
	return cmd
}

func printResult(cmd *cobra.Command, cfg table.Config, res *table.Result) error {
	ids, err := party.NewIDSlice(cfg.Players)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, id := range ids {
		fmt.Fprintf(out, "%-12s %s\n", id, labels(cfg.Cards, res.Hands[id]))
	}
	fmt.Fprintf(out, "%-12s %s\n", "board", labels(cfg.Cards, res.Board))
	if cfg.Transcript != nil {
		fmt.Fprintf(out, "%-12s %s\n", "hand", res.Hand)
	}
	return nil
}

var red = color.New(color.FgRed)

// labels names the cards, with hearts and diamonds in red on a terminal.
func labels(n int, indices []int) string {
	out := make([]string, len(indices))
	for i, index := range indices {
		label := table.Label(n, index)
		if n == 52 && (strings.HasSuffix(label, "h") || strings.HasSuffix(label, "d")) {
			label = red.Sprint(label)
		}
		out[i] = label
	}
	return strings.Join(out, " ")
}
