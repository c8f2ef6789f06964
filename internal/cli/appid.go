package cli

import (
	"github.com/spf13/cobra"

	"github.com/meigma/spk"
)

func newAppIDCmd(_ *globalFlags) *cobra.Command {
	var onlyID bool

	cmd := &cobra.Command{
		Use:   "appid <keyfile>...",
		Short: "Print the app ID for an existing key file",
		Long:  `Read <keyfile> and extract the textual app ID, printing it to stdout.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, keyfile := range args {
				kp, err := spk.LoadKeyFile(keyfile)
				if err != nil {
					return err
				}
				printAppID(cmd.OutOrStdout(), kp.AppID(), keyfile, onlyID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&onlyID, "only-id", "o", false, "only print the app ID, not the file name")

	return cmd
}
