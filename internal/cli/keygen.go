package cli

import (
	"github.com/spf13/cobra"

	"github.com/meigma/spk"
)

func newKeygenCmd(_ *globalFlags) *cobra.Command {
	var onlyID bool

	cmd := &cobra.Command{
		Use:   "keygen <output>...",
		Short: "Generate a new key file",
		Long: `Create a new key pair and store it in <output>. It can then be used as
input to the pack command. Store the output in a safe place! If you lose
it you will not be able to update your app, and if someone else gets hold
of it they will be able to hijack your app.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, output := range args {
				kp, err := spk.GenerateKeyPair()
				if err != nil {
					return err
				}
				if err := spk.WriteKeyFile(output, kp); err != nil {
					return err
				}
				printAppID(cmd.OutOrStdout(), kp.AppID(), output, onlyID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&onlyID, "only-id", "o", false, "only print the app ID, not the file name")

	return cmd
}
