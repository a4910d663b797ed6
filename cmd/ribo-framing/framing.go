package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/biogo/hts/sam"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/ribo-framing/internal/align"
	"github.com/inodb/ribo-framing/internal/annotate"
	"github.com/inodb/ribo-framing/internal/cache"
	"github.com/inodb/ribo-framing/internal/duckdb"
	"github.com/inodb/ribo-framing/internal/output"
	"github.com/inodb/ribo-framing/internal/stats"
)

// Config keys shared by flags, the config file and the environment.
const (
	keyLengths    = "framing.lengths"
	keyCDSBody    = "framing.cdsbody"
	keyFlanking   = "framing.flanking"
	keyCountMulti = "framing.count-multi"
	keyWorkers    = "framing.workers"
)

type framingOptions struct {
	input    string
	bed      string
	output   string
	genes    []string
	asites   string
	annotate string
	statsDB  string
	profile  string

	lengths    stats.Span
	cdsBody    annotate.BodyWindow
	flanking   stats.Span
	countMulti bool
	workers    int
}

func newFramingCmd(a *app) *cobra.Command {
	opts := &framingOptions{}

	cmd := &cobra.Command{
		Use:   "framing [options] <alignments>",
		Short: "Classify footprints and report reading-frame statistics",
		Long: `Classify every alignment in a BAM or SAM file (use '-' for stdin) against a
BED12 transcript annotation and write framing reports:

  <output>_framing_stats.txt   outcome counts
  <output>_frame_length.txt    body frame by footprint length
  <output>_around_start.txt    5' ends around the CDS start
  <output>_around_end.txt      5' ends around the CDS end`,
		Example: `  ribo-framing framing -b sgd.bed -o wt_rep1 wt_rep1.bam
  ribo-framing framing -b sgd.bed -g genes.txt --asites asites.txt -a wt_rep1_zf.bam -o wt_rep1 wt_rep1.bam
  samtools view -h wt.bam | ribo-framing framing -b sgd.bed -o wt -`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			if opts.bed == "" || opts.output == "" {
				return usageError{fmt.Errorf("--bed and --output are required")}
			}
			if err := a.resolveFramingConfig(opts); err != nil {
				return err
			}
			return runFraming(cmd.Context(), opts, a.logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.bed, "bed", "b", "", "BED12 transcript annotation, .gz and .lz4 accepted (required)")
	f.StringVarP(&opts.output, "output", "o", "", "Output file prefix (required)")
	f.StringArrayVarP(&opts.genes, "genes", "g", nil, "Transcript<TAB>gene table; a bare transcript suppresses it (repeatable)")
	f.StringVar(&opts.asites, "asites", "", "Footprint length<TAB>A-site offset table")
	f.StringVarP(&opts.annotate, "annotate", "a", "", "Write alignments with a ZF framing tag (.sam for SAM, else BAM)")
	f.StringVar(&opts.statsDB, "stats-db", "", "Also store the report tables in this DuckDB database")
	f.StringVar(&opts.profile, "profile", "", "Write a cpu or mem profile next to the output")
	f.StringP("lengths", "l", "26,34", "Footprint length range min,max")
	f.StringP("cdsbody", "c", "34,-31", "CDS body window afterStart,beforeEnd")
	f.StringP("flanking", "f", "-100,100", "Metagene window start,end around the CDS start and end")
	f.Bool("count-multi", false, "Keep the HI:1 alignment of multi-mapping reads")
	f.IntP("workers", "j", 1, "Classification workers; more than 1 enables the parallel pipeline")

	for key, name := range map[string]string{
		keyLengths:    "lengths",
		keyCDSBody:    "cdsbody",
		keyFlanking:   "flanking",
		keyCountMulti: "count-multi",
		keyWorkers:    "workers",
	} {
		_ = a.v.BindPFlag(key, f.Lookup(name))
	}

	return cmd
}

// resolveFramingConfig reads the bound settings, so that flags override the
// environment, which overrides the config file.
func (a *app) resolveFramingConfig(opts *framingOptions) error {
	var err error
	if opts.lengths.Start, opts.lengths.End, err = parsePair(a.v.GetString(keyLengths)); err != nil {
		return fmt.Errorf("lengths: %w", err)
	}
	if opts.cdsBody.AfterStart, opts.cdsBody.BeforeEnd, err = parsePair(a.v.GetString(keyCDSBody)); err != nil {
		return fmt.Errorf("cdsbody: %w", err)
	}
	if opts.flanking.Start, opts.flanking.End, err = parsePair(a.v.GetString(keyFlanking)); err != nil {
		return fmt.Errorf("flanking: %w", err)
	}
	opts.countMulti = a.v.GetBool(keyCountMulti)
	opts.workers = a.v.GetInt(keyWorkers)
	if opts.workers < 1 {
		return fmt.Errorf("workers: must be at least 1, got %d", opts.workers)
	}
	switch opts.profile {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile: expected cpu or mem, got %q", opts.profile)
	}
	return nil
}

// parsePair parses "a,b" into two integers.
func parsePair(s string) (int, int, error) {
	first, second, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected two comma-separated integers, got %q", s)
	}
	a, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", s, err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(second))
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return a, b, nil
}

func runFraming(ctx context.Context, opts *framingOptions, logger *zap.Logger) error {
	switch opts.profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(filepath.Dir(opts.output)), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(filepath.Dir(opts.output)), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	var genes *cache.GeneMap
	if len(opts.genes) > 0 {
		var err error
		if genes, err = cache.LoadGeneMap(opts.genes...); err != nil {
			return err
		}
		logger.Info("loaded gene table", zap.Int("entries", genes.Len()))
	}

	catalog := cache.New()
	loader := cache.NewBEDLoader(opts.bed)
	loader.SetGeneMap(genes)
	loader.SetLogger(logger)
	if err := loader.Load(catalog); err != nil {
		return err
	}

	clf := annotate.NewClassifier(catalog, annotate.Config{
		MinLength:  opts.lengths.Start,
		MaxLength:  opts.lengths.End,
		Body:       opts.cdsBody,
		CountMulti: opts.countMulti,
	})
	clf.SetLogger(logger)
	if opts.asites != "" {
		asites, err := annotate.LoadASites(opts.asites)
		if err != nil {
			return err
		}
		clf.SetASites(asites)
		logger.Info("loaded A-site offsets", zap.Int("lengths", asites.Len()))
	}

	reports, err := output.CreateReports(opts.output)
	if err != nil {
		return err
	}
	defer reports.Close()

	reader, err := align.Open(opts.input, opts.workers)
	if err != nil {
		return err
	}
	defer reader.Close()

	var annotated *align.Writer
	if opts.annotate != "" {
		if annotated, err = align.Create(opts.annotate, reader.Header(), opts.workers); err != nil {
			return err
		}
		defer func() {
			if annotated != nil {
				annotated.Close()
			}
		}()
	}

	fs := stats.New(opts.lengths, opts.flanking)
	n, err := clf.ClassifyAll(ctx, reader, opts.workers, func(rec *sam.Record, res annotate.Result) error {
		fs.Tally(res)
		if annotated != nil {
			return annotated.Write(rec, res.Aux())
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := reports.Write(fs); err != nil {
		return err
	}
	if err := reports.Close(); err != nil {
		return fmt.Errorf("close reports: %w", err)
	}
	if annotated != nil {
		if err := annotated.Close(); err != nil {
			return fmt.Errorf("close annotated output: %w", err)
		}
		annotated = nil
	}

	if opts.statsDB != "" {
		if err := exportStats(opts, n, fs); err != nil {
			return err
		}
		logger.Info("stored statistics", zap.String("db", opts.statsDB))
	}

	logger.Info("framing complete",
		zap.Int("records", n),
		zap.Int("annotated", fs.Align.Annotated()),
		zap.Int("good", fs.Align.Count(annotate.Good)),
		zap.Strings("reports", reports.Paths()))
	return nil
}

func exportStats(opts *framingOptions, records int, fs *stats.FramingStats) error {
	store, err := duckdb.Open(opts.statsDB)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.WriteRun(duckdb.RunInfo{
		Sample:     filepath.Base(opts.output),
		Created:    time.Now(),
		Input:      duckdb.StatFile(opts.input),
		Annotation: duckdb.StatFile(opts.bed),
		Records:    records,
	}, fs)
}
