package cli

import (
	"fmt"

	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/hammersynth/internal/domain/kmers"
	"github.com/kailas-cloud/hammersynth/internal/usecase/bincheck"
)

func bincheckCommand(a *app) *cobra.Command {
	var (
		output     string
		totalsFile string
		k          int
		progress   bool
	)

	cmd := &cobra.Command{
		Use:   "bincheck MASTERDIR",
		Short: "Chart bin quality against seed-protein distance to the reference genome",
		Long: `For every sample subdirectory of MASTERDIR with an Eval/index.tbl file, report
each bin's seed-protein distance to its reference genome next to its quality
numbers. --totals writes good and bad bin counts per distance range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			out, err := xopen.Wopen(output)
			if err != nil {
				return fmt.Errorf("open report %s: %w", output, err)
			}
			defer func() {
				if cerr := out.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}()

			opts := bincheck.Options{MasterDir: args[0], K: k, Logger: a.logger}
			if progress {
				opts.Progress = &barProgress{}
			}
			var totals *bincheck.Totals
			if totalsFile != "" {
				totals = &bincheck.Totals{}
			}

			if _, err := bincheck.Check(cmd.Context(), opts, out, totals); err != nil {
				return err
			}
			if totals == nil {
				return nil
			}
			return writeTotals(totalsFile, totals)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "-", "report file ('-' for stdout)")
	flags.StringVar(&totalsFile, "totals", "", "file to receive counts by distance range")
	flags.IntVar(&k, "kmer", kmers.DefaultK, "protein k-mer length")
	flags.BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	return cmd
}

func writeTotals(path string, totals *bincheck.Totals) (err error) {
	w, err := xopen.Wopen(path)
	if err != nil {
		return fmt.Errorf("open totals %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return totals.Write(w)
}
