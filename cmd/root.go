package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/darmiel/chatsts/internal/buildinfo"
	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/logging"
)

// global flags
var (
	userConfig string
)

const (
	RemoteAddrKey = "remote"
)

var f = NewFactory()

var rootCmd = &cobra.Command{
	Use:   "chatsts",
	Short: fmt.Sprintf("chatsts (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `chatsts is a small Security Token Service for chat widgets.
	It exchanges a user identity (and optionally client credentials) for a short-lived
	HS256 JWT that the conversational AI platform trusts.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		logging.Init(nil)
		if configErr != nil { // handle error after logging is initialized
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVarP(&userConfig, "config", "c", "",
		"Configuration file (default is ./chatsts.yaml, $HOME/chatsts.yaml or $XDG_CONFIG_HOME/chatsts/chatsts.yaml)")

	flags := rootCmd.PersistentFlags()

	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	bindFlag(flags, logging.LevelKey, "log-level")

	flags.String("log-format", "console", "Log format (console, json)")
	bindFlag(flags, logging.FormatKey, "log-format")

	flags.Bool("no-color", false, "Disable color output")
	bindFlag(flags, logging.NoColorKey, "no-color")

	flags.StringVar(&f.RemoteAddr, "server", "", "Address of a remote chatsts server")
	bindFlag(flags, RemoteAddrKey, "server")

	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// bindFlag binds the flag name of fs to the viper key.
func bindFlag(fs *pflag.FlagSet, key, name string) {
	if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
		log.Fatal().Err(err).Str("flag", name).Msg("failed to bind flag")
	}
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if userConfig != "" {
		viper.SetConfigFile(userConfig)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		configDir, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(configDir + "/chatsts")
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName("chatsts")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}
