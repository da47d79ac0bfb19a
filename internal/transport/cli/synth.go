package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/hammersynth/internal/usecase/synth"
)

func synthCommand(a *app) *cobra.Command {
	var (
		opts       synth.SynthOptions
		maxGenomes int
		fraction   float64
	)

	cmd := &cobra.Command{
		Use:   "synth REPDB OUTDIR",
		Short: "Build a synthetic sample from binning output and/or an evaluation report",
		Long: `Build a synthetic sample from mostly-good bins of a binning directory and/or
mostly-good genomes listed in an evaluation report. At most --max genomes are
drawn at random from each source. Every written genome is cached in OUTDIR.

REPDB is the representative-genome database manifest.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RepDB, opts.OutDir = args[0], args[1]
			opts.MaxGenomes = intOr(cmd, "max", maxGenomes, a.cfg.Sample.MaxGenomes)
			opts.ContigFraction = a.fractionOr(cmd, fraction)

			run := a.newRun()
			sum, err := run.Synth(cmd.Context(), opts, a.fetcher)
			if err != nil {
				return err
			}
			logSummary(run, sum)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.BinDir, "binDir", "", "master binning directory")
	flags.StringVar(&opts.EvalFile, "evalFile", "", "genome evaluation report (tab-separated)")
	flags.IntVar(&maxGenomes, "max", 1000, "maximum genomes drawn from each source")
	flags.Float64Var(&fraction, "contigFrac", 1.0, "probability of keeping each contig, in (0,1]")
	flags.BoolVar(&opts.Clear, "clear", false, "erase OUTDIR before caching genomes")
	flags.StringVarP(&opts.Output, "output", "o", "-", "output FASTA file ('-' for stdout)")
	return cmd
}

func binsynthCommand(a *app) *cobra.Command {
	var (
		opts     synth.BinSynthOptions
		fraction float64
	)

	cmd := &cobra.Command{
		Use:   "binsynth REPDB BINDIR OUTDIR",
		Short: "Build a synthetic sample from every mostly-good bin of a binning directory",
		Long: `Build a synthetic sample from every mostly-good bin found in the sample
subdirectories of BINDIR. With --max the bins are drawn at random and capped.
Every written genome is cached in OUTDIR.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RepDB, opts.BinDir, opts.OutDir = args[0], args[1], args[2]
			opts.ContigFraction = a.fractionOr(cmd, fraction)

			run := a.newRun()
			sum, err := run.BinSynth(cmd.Context(), opts)
			if err != nil {
				return err
			}
			logSummary(run, sum)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.MaxGenomes, "max", 0, "maximum bins to write (0 = all)")
	flags.Float64Var(&fraction, "contigFrac", 1.0, "probability of keeping each contig, in (0,1]")
	flags.StringVarP(&opts.Output, "output", "o", "-", "output FASTA file ('-' for stdout)")
	return cmd
}

func rewriteCommand(a *app) *cobra.Command {
	var (
		opts     synth.RewriteOptions
		fraction float64
	)

	cmd := &cobra.Command{
		Use:   "rewrite REPDB INDIR",
		Short: "Relabel a cached genome directory against a representative-genome database",
		Long: `Relabel every cached genome in INDIR against REPDB. Genomes whose closest
representative is below the database similarity threshold are dropped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.RepDB, opts.InDir = args[0], args[1]
			opts.ContigFraction = a.fractionOr(cmd, fraction)

			run := a.newRun()
			sum, err := run.Rewrite(cmd.Context(), opts)
			if err != nil {
				return err
			}
			logSummary(run, sum)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&fraction, "contigFrac", 1.0, "probability of keeping each contig, in (0,1]")
	flags.StringVarP(&opts.Output, "output", "o", "-", "output FASTA file ('-' for stdout)")
	return cmd
}

// intOr returns the flag value when it was given on the command line, else the configured one.
func intOr(cmd *cobra.Command, name string, flagVal, configured int) int {
	if cmd.Flags().Changed(name) {
		return flagVal
	}
	return configured
}

// fractionOr resolves --contigFrac against the configured default.
func (a *app) fractionOr(cmd *cobra.Command, flagVal float64) float64 {
	if cmd.Flags().Changed("contigFrac") {
		return flagVal
	}
	return a.cfg.Sample.ContigFraction
}
