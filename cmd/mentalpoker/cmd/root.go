package cmd

import (
	"fmt"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taurusgroup/mental-poker/pkg/math/curve"
)

// EnvPrefix is the prefix of environment variables overriding flags,
// e.g. MENTALPOKER_CARDS=32.
const EnvPrefix = "MENTALPOKER"

const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
	flagLogJSON  = "log-json"
	flagCurve    = "curve"
	flagCards    = "cards"
)

// NewRootCmd creates the mentalpoker command. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:           "mentalpoker",
		Short:         "Shuffle, deal and reveal cards without a trusted dealer",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cmd)
		},
	}
	rootCmd.PersistentFlags().String(flagConfig, "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String(flagLogLevel, zerolog.InfoLevel.String(), "log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().Bool(flagLogJSON, false, "log as JSON instead of text")

	rootCmd.AddCommand(
		newPlayCmd(v),
		newCardsCmd(v),
		newAuditCmd(v),
	)
	return rootCmd
}

// initConfig binds the flags of cmd to v, then reads the environment and the
// config file. Flags set on the command line take precedence.
func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if file := v.GetString(flagConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func newLogger(v *viper.Viper, cmd *cobra.Command) (log.Logger, error) {
	level, err := zerolog.ParseLevel(v.GetString(flagLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", flagLogLevel, err)
	}
	opts := []log.Option{log.LevelOption(level)}
	if v.GetBool(flagLogJSON) {
		opts = append(opts, log.OutputJSONOption())
	}
	return log.NewLogger(cmd.ErrOrStderr(), opts...), nil
}

func groupFlag(v *viper.Viper) (curve.Curve, error) {
	name := v.GetString(flagCurve)
	group := curve.FromName(name)
	if group == nil {
		return nil, fmt.Errorf("unknown curve %q", name)
	}
	return group, nil
}

func addGameFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagCurve, curve.Secp256k1{}.Name(), "group the cards are encoded in (secp256k1, ristretto255)")
	cmd.Flags().Int(flagCards, 52, "number of cards in the deck")
}
