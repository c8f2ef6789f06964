package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/spk"
)

func newUnpackCmd(flags *globalFlags) *cobra.Command {
	var onlyID bool

	cmd := &cobra.Command{
		Use:   "unpack <spkfile> [<outdir>]",
		Short: "Unpack an spk to a directory, verifying its signature",
		Long: `Check that <spkfile>'s signature is valid. If so, unpack it to <outdir>
and print the app ID and file name. If <outdir> is not specified, it is
chosen by removing the suffix ".spk" from the input file name.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spkfile := args[0]
			var outdir string
			switch {
			case len(args) == 2:
				outdir = args[1]
			case strings.HasSuffix(spkfile, ".spk"):
				outdir = strings.TrimSuffix(spkfile, ".spk")
			default:
				return fmt.Errorf("%s: no .spk suffix, specify <outdir> explicitly", spkfile)
			}

			logger, err := flags.logger()
			if err != nil {
				return err
			}

			id, err := spk.Unpack(spkfile, outdir, spk.WithLogger(logger))
			if err != nil {
				return err
			}
			printAppID(cmd.OutOrStdout(), id, spkfile, onlyID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&onlyID, "only-id", "o", false, "only print the app ID, not the file name")

	return cmd
}
