package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcash-project/xcash-temp-consensus/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the xcashd-consensus config file",
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configValidateCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "init",
		Short:        "Write a default config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := runtime
			rc.Config = config.Config{
				Enabled:  false,
				IsLeader: false,
				Dev:      false,
			}
			if err := rc.WriteConfigFile(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote config to", rc.ConfigFile)
			return nil
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "validate",
		Short:        "Validate the config file, including delegate key derivation",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := runtime.Config
			slotDuration := config.SlotDurationFor(c.Dev)

			if !c.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "temp consensus disabled; nothing further to validate")
				return nil
			}

			if c.IsLeader {
				if _, err := config.BuildLeaderConfig(c, slotDuration); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "leader configuration OK")
			}

			vc := config.BuildValidatorConfig(c)
			fmt.Fprintln(cmd.OutOrStdout(), "validator configuration OK, expected_leader_id:", vc.ExpectedLeaderID)
			return nil
		},
	}
}
