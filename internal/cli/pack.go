package cli

import (
	"github.com/spf13/cobra"

	"github.com/meigma/spk"
)

func newPackCmd(flags *globalFlags) *cobra.Command {
	var onlyID bool

	cmd := &cobra.Command{
		Use:   "pack <dirname> <keyfile> [<output>]",
		Short: "Create an spk from a directory tree and a signing key",
		Long: `Pack the contents of <dirname> as an spk, signing it using <keyfile>,
and writing the result to <output>. If <output> is not specified, it is
formed by appending ".spk" to the directory name.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, keyfile := args[0], args[1]
			output := dir + ".spk"
			if len(args) == 3 {
				output = args[2]
			}

			logger, err := flags.logger()
			if err != nil {
				return err
			}

			id, err := spk.Pack(dir, keyfile, output, spk.WithLogger(logger))
			if err != nil {
				return err
			}
			printAppID(cmd.OutOrStdout(), id, output, onlyID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&onlyID, "only-id", "o", false, "only print the app ID, not the file name")

	return cmd
}
