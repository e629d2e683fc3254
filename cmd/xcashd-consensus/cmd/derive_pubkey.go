package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xcash-project/xcash-temp-consensus/internal/keys"
)

// derivePubkeyCmd is the corrected replacement for
// migration/derive_ed25519_keys.cpp: given a 128-hex-char delegate
// secret key, print the derived Ed25519 public key so an operator can
// paste it into the compile-time allow-list.
func derivePubkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "derive-pubkey [secret-key-hex]",
		Short:        "Derive and print the Ed25519 public key for a delegate secret key",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := keys.DeriveFromHex(args[0])
			if err != nil {
				return err
			}
			if err := keys.SelfTest(kp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(kp.Public))
			return nil
		},
	}
}
