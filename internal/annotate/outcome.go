package annotate

import (
	"strconv"
	"strings"

	"github.com/inodb/ribo-framing/internal/locus"
)

// Outcome is the terminal classification of one alignment record.
type Outcome int

const (
	NoHit            Outcome = iota // unmapped
	MultiHit                        // multi-mapping read not retained
	TooShort                        // footprint shorter than the minimum length
	TooLong                         // footprint longer than the maximum length
	NoGene                          // overlaps no transcript
	NoncodingOnly                   // only non-coding genes overlap
	NoncodingOverlap                // coding and non-coding genes overlap
	MultiCoding                     // two or more coding genes overlap
	NoCompatible                    // one coding gene, no splice-compatible transcript
	Ambig                           // compatible transcripts disagree on frame
	Good                            // framed against one gene
)

var outcomeNames = [...]string{
	NoHit:            "NoHit",
	MultiHit:         "MultiHit",
	TooShort:         "TooShort",
	TooLong:          "TooLong",
	NoGene:           "NoGene",
	NoncodingOnly:    "Noncoding",
	NoncodingOverlap: "NoncodingOverlap",
	MultiCoding:      "MultiCoding",
	NoCompatible:     "NoCompatible",
	Ambig:            "Ambig",
	Good:             "Good",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "Outcome(" + strconv.Itoa(int(o)) + ")"
	}
	return outcomeNames[o]
}

// IsAnnotated reports whether the footprint reached transcript overlap
// resolution.
func (o Outcome) IsAnnotated() bool {
	return o >= NoGene && o <= Good
}

// Outcomes lists every outcome in report order.
func Outcomes() []Outcome {
	out := make([]Outcome, 0, len(outcomeNames))
	for o := NoHit; o <= Good; o++ {
		out = append(out, o)
	}
	return out
}

// OptInt is an integer that may be withheld.
type OptInt struct {
	Value int
	Valid bool
}

// Some returns a present OptInt.
func Some(v int) OptInt {
	return OptInt{Value: v, Valid: true}
}

// String renders the value, or "*" when withheld.
func (o OptInt) String() string {
	if !o.Valid {
		return "*"
	}
	return strconv.Itoa(o.Value)
}

// GeneFraming places a footprint relative to one gene's CDS.
type GeneFraming struct {
	Gene       locus.Name
	VsCDSStart OptInt // 5' end minus CDS start
	VsCDSEnd   OptInt // 5' end minus CDS end (exclusive)
	Frame      OptInt // codon register inside the CDS body

	WithASite    bool       // A-site fields are reported
	ASite        *locus.Pos // nil when the length has no A-site offset
	ASiteVsStart OptInt
}

// Result is the classification of one alignment record.
type Result struct {
	Outcome Outcome
	Length  int          // exonic footprint length, 0 before the footprint is known
	Framing *GeneFraming // only for Good
}

// Aux renders the result for the ZF annotation tag.
func (r Result) Aux() string {
	if r.Outcome != Good || r.Framing == nil {
		return r.Outcome.String()
	}
	f := r.Framing
	parts := []string{
		r.Outcome.String(),
		f.Gene.String(),
		f.VsCDSStart.String(),
		f.VsCDSEnd.String(),
		f.Frame.String(),
	}
	if f.WithASite {
		asite := "*"
		if f.ASite != nil {
			asite = f.ASite.String()
		}
		parts = append(parts, asite, f.ASiteVsStart.String())
	}
	return strings.Join(parts, "/")
}
