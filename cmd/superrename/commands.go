package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"superrename/internal/config"
	appErrors "superrename/internal/errors"
	"superrename/internal/process"
)

const helpFooter = `
Run superrename -h | --help to see command usage.
`

const (
	flagDebug            = "debug"
	flagSkipUpgradeCheck = "skip-upgrade-check"
	flagForce            = "force"
)

func newRootCmd(a *app) *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:           config.ToolName,
		Short:         description,
		Long:          fmt.Sprintf("%s\nversion: %s", description, Version),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion(cmd.OutOrStdout())
				return nil
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "output the current version")
	root.PersistentFlags().Bool(flagDebug, false, "write a debug log to the global dir (or set SR_DEBUG=true)")
	root.PersistentFlags().Bool(flagSkipUpgradeCheck, false, "skip the daily upgrade check (or set SR_SKIP_UPGRADE_CHECK=true)")
	root.SetHelpTemplate(root.HelpTemplate() + helpFooter)

	root.AddCommand(
		newInstallCmd(a),
		newUpgradeCmd(a),
		newProjectCmd(a),
	)
	return root
}

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:                "install [module]",
		Aliases:            []string{"i"},
		Short:              "install one or more air-module",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			bin := config.ToolName + "-install"
			res := a.delegator.Run(cmd.Context(), process.Command{
				Name:   bin,
				Args:   args,
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			if res.ExitCode == process.ExitNotFound && res.Err != nil {
				return appErrors.New(appErrors.CodeToolNotFound, fmt.Sprintf("%s: command not found, reinstall %s to restore it", bin, config.ToolName), res.Err)
			}
			if res.Err != nil {
				return appErrors.New(appErrors.CodeCommandFailed, fmt.Sprintf("%s: %v", bin, res.Err), res.Err)
			}
			a.logger.Debug("install delegated", zap.Strings("args", args), zap.Int("exit", res.ExitCode))
			a.exitCode = res.ExitCode
			return nil
		},
	}
}

func newUpgradeCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "check for and install the latest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := a.upgrader.CheckAndUpgrade(cmd.Context(), force)
			if err != nil {
				return err
			}
			a.logger.Debug("explicit upgrade", zap.Bool("force", force), zap.Stringer("outcome", outcome))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, flagForce, false, "ignore the once-a-day limit")
	return cmd
}

func newProjectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "proj",
		Aliases: []string{"project"},
		Short:   "initialize a SuperRename project",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Project initialization is not available yet.")
			return nil
		},
	}
}
