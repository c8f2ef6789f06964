package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meigma/spk"
)

func newVerifyCmd(flags *globalFlags) *cobra.Command {
	var onlyID bool

	cmd := &cobra.Command{
		Use:   "verify <spkfile>...",
		Short: "Verify an spk's signature without extracting it",
		Long: `Check that <spkfile>'s signature is valid and that its contents match
the signed hash, without writing anything to disk. Prints the app ID and
the payload digest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := flags.logger()
			if err != nil {
				return err
			}

			for _, spkfile := range args {
				res, err := spk.Verify(spkfile, spk.WithLogger(logger))
				if err != nil {
					return err
				}
				if onlyID {
					printAppID(cmd.OutOrStdout(), res.AppID, spkfile, true)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s payload=%s size=%d\n",
					res.AppID, spkfile, res.Payload, res.PayloadSize)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&onlyID, "only-id", "o", false, "only print the app ID, not the digest details")

	return cmd
}
