package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/fileassist/internal/config"
	"github.com/bnema/fileassist/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootFlags struct {
	configPath         string
	writeDefaultConfig bool
	noPrompt           bool
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "fileassist",
		Short: "Conversational file assistant backed by a local LLM",
		Long: "fileassist reads plain-language requests, turns them into file actions " +
			"(list, search, summarize, ask, move, organize) with an LLM and runs them in the " +
			"current directory, keeping an activity log and a session context between runs.",
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.writeDefaultConfig {
				return writeDefaultConfig(cmd, flags.configPath)
			}

			cfg, err := config.Load(v, flags.configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := wireApp(ctx, cmd, cfg, flags)
			if err != nil {
				return err
			}
			return app.run(ctx)
		},
	}
	rootCmd.SetVersionTemplate("fileassist {{.Version}}\n")

	pf := rootCmd.Flags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/fileassist/config.toml)")
	pf.String("provider", "", "LLM provider: ollama or openai")
	pf.String("base-url", "", "LLM server base URL")
	pf.String("model", "", "model name")
	pf.String("log-level", "", "diagnostic log level: debug, info, warn or error")
	pf.BoolVar(&flags.writeDefaultConfig, "write-default-config", false, "write the default config file and exit")
	pf.BoolVar(&flags.noPrompt, "no-prompt", false, "never prompt for missing parameters or confirmations")

	for key, flag := range map[string]string{
		config.KeyProvider: "provider",
		config.KeyBaseURL:  "base-url",
		config.KeyModel:    "model",
		config.KeyLogLevel: "log-level",
	} {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	return rootCmd
}

func writeDefaultConfig(cmd *cobra.Command, path string) error {
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	if err := config.WriteDefault(path, false); err != nil {
		return err
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return err
}
