package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-spectral/dsp/window"
)

func newWindowsCommand(a *app) *cobra.Command {
	var (
		size     int
		periodic bool
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "windows [window-name ...]",
		Short: "Print spectral properties of the analyzer window functions",
		Long: `windows measures each window on a zero-padded transform and prints its
coherent gain, noise bandwidth, main lobe and side lobe figures. Without
arguments every known window is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if list {
				for _, n := range window.Names() {
					if _, err := fmt.Fprintln(w, n); err != nil {
						return err
					}
				}
				return nil
			}

			if len(args) == 0 {
				args = window.Names()
			}
			types := make([]window.Type, 0, len(args))
			for _, name := range args {
				t, err := window.Parse(name)
				if err != nil {
					return err
				}
				types = append(types, t)
			}

			var opts []window.Option
			if periodic {
				opts = append(opts, window.WithPeriodic())
			}
			return printWindowTable(w, types, size, opts)
		},
	}

	cmd.Flags().IntVar(&size, "size", 1024, "window length in samples")
	cmd.Flags().BoolVar(&periodic, "periodic", false, "use periodic (FFT) form instead of symmetric")
	cmd.Flags().BoolVar(&list, "list", false, "list available window names")

	return cmd
}

func printWindowTable(w io.Writer, types []window.Type, size int, opts []window.Option) error {
	if size < 2 {
		return fmt.Errorf("--size must be >= 2: %d", size)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tBW 3dB [bins]\tSidelobe [dB]\t1st Min [bins]\tScallop [dB]"); err != nil {
		return err
	}

	for _, t := range types {
		a, err := window.Analyze(window.Generate(t, size, opts...))
		if err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.4f\t%.2f\t%.4f\t%.4f\n",
			t, size, a.CoherentGain, a.ENBW, a.Bandwidth3dB,
			a.HighestSidelobedB, a.FirstMinimumBins, a.ScallopLossdB); err != nil {
			return err
		}
	}
	return tw.Flush()
}
