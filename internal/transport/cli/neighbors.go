package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/hammersynth/internal/usecase/source"
	"github.com/kailas-cloud/hammersynth/internal/usecase/synth"
)

func neighborsCommand(a *app) *cobra.Command {
	var (
		opts       synth.NeighborOptions
		minGenomes int
		fraction   float64
		fetch      string
		progress   bool
	)

	cmd := &cobra.Command{
		Use:   "neighbors NEIGHBORTABLE",
		Short: "Build a balanced sample from a representative-neighbor table",
		Long: `Build a sample of at least --minGenomes genomes spread evenly over the
representatives of a neighbor table (columns genome_id, genome_name, rep_id,
distance). Within each representative the picks are spaced across the
distance range.

--fetch selects whose contigs are written for each pick: the representative's
(the historical behavior) or the neighbor's own.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("fetch") {
				fetch = a.cfg.Neighbors.Fetch
			}
			mode, err := source.ParseFetchMode(fetch)
			if err != nil {
				return err
			}
			opts.Table = args[0]
			opts.Fetch = mode
			opts.MinGenomes = intOr(cmd, "minGenomes", minGenomes, a.cfg.Sample.MinGenomes)
			opts.ContigFraction = a.fractionOr(cmd, fraction)
			if progress {
				opts.Progress = &barProgress{}
			}

			run := a.newRun()
			sum, err := run.Neighbors(cmd.Context(), opts, a.fetcher)
			if err != nil {
				return err
			}
			logSummary(run, sum)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&minGenomes, "minGenomes", 100, "minimum number of genomes in the sample")
	flags.Float64Var(&fraction, "contigFrac", 1.0, "probability of keeping each contig, in (0,1]")
	flags.StringVar(&fetch, "fetch", string(source.FetchRepresentative), "contigs to write: representative or neighbor")
	flags.BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	flags.StringVarP(&opts.Output, "output", "o", "-", "output FASTA file ('-' for stdout)")
	return cmd
}
