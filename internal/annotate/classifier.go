// Package annotate classifies ribosome footprints against a transcript
// catalog and computes their reading frame.
package annotate

import (
	"iter"

	"github.com/biogo/hts/sam"
	"go.uber.org/zap"

	"github.com/inodb/ribo-framing/internal/align"
	"github.com/inodb/ribo-framing/internal/cache"
	"github.com/inodb/ribo-framing/internal/locus"
)

// TranscriptIndex finds transcripts whose extent may overlap a location.
type TranscriptIndex interface {
	FindOverlapping(loc *locus.Spliced) iter.Seq[*cache.Transcript]
}

// Config holds the classification parameters.
type Config struct {
	MinLength  int        // shortest footprint framed
	MaxLength  int        // longest footprint framed
	Body       BodyWindow // CDS body used for frame calls
	CountMulti bool       // keep the HI:1 alignment of multi-mapping reads
}

// Classifier assigns an Outcome to each alignment record. It holds no
// per-record state and is safe for concurrent use.
type Classifier struct {
	index  TranscriptIndex
	cfg    Config
	asites *ASites
	logger *zap.Logger
}

// NewClassifier creates a classifier over the given transcript index.
func NewClassifier(index TranscriptIndex, cfg Config) *Classifier {
	return &Classifier{
		index:  index,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetASites adds A-site positions to Good results.
func (c *Classifier) SetASites(a *ASites) {
	c.asites = a
}

// Config returns the classification parameters.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Classify classifies one alignment record. Errors are reserved for
// malformed records; every classification is a valid Result.
func (c *Classifier) Classify(rec *sam.Record, refs *align.RefNames) (Result, error) {
	if align.IsUnmapped(rec) {
		return Result{Outcome: NoHit}, nil
	}
	if !c.retained(rec) {
		return Result{Outcome: MultiHit}, nil
	}
	fp, err := align.Footprint(rec, refs)
	if err != nil {
		return Result{}, err
	}
	return c.ClassifyFootprint(fp), nil
}

// retained applies the multi-mapping policy. A read is kept when it has a
// single hit (NH absent counts as one) or, with CountMulti, when this is its
// first listed hit.
func (c *Classifier) retained(rec *sam.Record) bool {
	nh, ok := align.HitCount(rec)
	if !ok || nh == 1 {
		return true
	}
	if !c.cfg.CountMulti {
		return false
	}
	hi, ok := align.HitIndex(rec)
	return ok && hi == 1
}

// ClassifyFootprint classifies a mapped, retained footprint.
func (c *Classifier) ClassifyFootprint(fp *locus.Spliced) Result {
	length := fp.Length()
	switch {
	case length < c.cfg.MinLength:
		return Result{Outcome: TooShort, Length: length}
	case length > c.cfg.MaxLength:
		return Result{Outcome: TooLong, Length: length}
	}

	var candidates []*cache.Transcript
	for trx := range c.index.FindOverlapping(fp) {
		if trx.Loc.Strand() == fp.Strand() && trx.Loc.Overlaps(fp) {
			candidates = append(candidates, trx)
		}
	}
	if len(candidates) == 0 {
		return Result{Outcome: NoGene, Length: length}
	}

	groups := cache.GroupByGene(candidates)
	if len(groups) > 1 {
		coding := 0
		for _, trxs := range groups {
			if len(codingOnly(trxs)) > 0 {
				coding++
			}
		}
		switch coding {
		case 0:
			return Result{Outcome: NoncodingOnly, Length: length}
		case len(groups):
			return Result{Outcome: MultiCoding, Length: length}
		default:
			return Result{Outcome: NoncodingOverlap, Length: length}
		}
	}

	var coding []*cache.Transcript
	for _, trxs := range groups {
		coding = codingOnly(trxs)
	}
	if len(coding) == 0 {
		return Result{Outcome: NoncodingOnly, Length: length}
	}

	outcome, framing := FrameGene(c.cfg.Body, coding, fp)
	if outcome == Good && c.asites != nil {
		framing.WithASite = true
		if asite, ok := c.asites.ASite(fp); ok {
			framing.ASite = &asite
			framing.ASiteVsStart = aSiteVsStart(asite, coding, fp)
		}
	}
	if outcome == Ambig {
		c.logger.Debug("ambiguous frame",
			zap.Stringer("footprint", fp),
			zap.Int("transcripts", len(coding)))
	}
	return Result{Outcome: outcome, Length: length, Framing: framing}
}

func codingOnly(trxs []*cache.Transcript) []*cache.Transcript {
	var out []*cache.Transcript
	for _, t := range trxs {
		if t.IsProteinCoding() {
			out = append(out, t)
		}
	}
	return out
}
