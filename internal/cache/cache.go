package cache

import (
	"errors"
	"fmt"
	"iter"
	"sort"

	"gopkg.in/fatih/set.v0"

	"github.com/inodb/ribo-framing/internal/locus"
)

// ErrDuplicateTranscript is returned when a transcript ID is added twice.
var ErrDuplicateTranscript = errors.New("transcript already exists")

// Catalog owns all transcripts of an annotation and answers overlap queries.
// It is built once and is safe for concurrent reads afterwards.
type Catalog struct {
	transcripts map[locus.Name]*Transcript
	genes       map[locus.Name]set.Interface
	trees       map[locus.Name]*IntervalTree
	nextUID     uintptr
}

// New creates a new empty catalog.
func New() *Catalog {
	return &Catalog{
		transcripts: make(map[locus.Name]*Transcript),
		genes:       make(map[locus.Name]set.Interface),
		trees:       make(map[locus.Name]*IntervalTree),
	}
}

// AddTranscript records t in the ID, gene and location indexes.
func (c *Catalog) AddTranscript(t *Transcript) (locus.Name, error) {
	if _, ok := c.transcripts[t.ID]; ok {
		return locus.Name{}, fmt.Errorf("%w: %s", ErrDuplicateTranscript, t.ID)
	}

	ref := t.Loc.Ref()
	tree, ok := c.trees[ref]
	if !ok {
		tree = &IntervalTree{}
		c.trees[ref] = tree
	}
	if err := tree.Insert(t, c.nextUID); err != nil {
		return locus.Name{}, fmt.Errorf("index transcript %s: %w", t.ID, err)
	}
	c.nextUID++

	c.transcripts[t.ID] = t
	ids, ok := c.genes[t.Gene]
	if !ok {
		ids = set.New(set.NonThreadSafe)
		c.genes[t.Gene] = ids
	}
	ids.Add(t.ID)
	return t.ID, nil
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
func (c *Catalog) GetTranscript(id string) *Transcript {
	return c.transcripts[locus.Intern(id)]
}

// GeneTranscripts returns the transcripts of a gene sorted by ID.
func (c *Catalog) GeneTranscripts(gene string) []*Transcript {
	ids, ok := c.genes[locus.Intern(gene)]
	if !ok {
		return nil
	}
	result := make([]*Transcript, 0, ids.Size())
	ids.Each(func(item interface{}) bool {
		result = append(result, c.transcripts[item.(locus.Name)])
		return true
	})
	sortByID(result)
	return result
}

// FindOverlapping lazily yields every transcript whose genomic extent
// intersects the extent of loc. Candidates are not checked against exon
// structure or strand.
func (c *Catalog) FindOverlapping(loc *locus.Spliced) iter.Seq[*Transcript] {
	return func(yield func(*Transcript) bool) {
		tree, ok := c.trees[loc.Ref()]
		if !ok {
			return
		}
		tree.DoOverlaps(loc.Start(), loc.End(), yield)
	}
}

// FindTranscripts returns all transcripts whose extent covers pos, sorted by
// ID.
func (c *Catalog) FindTranscripts(pos locus.Pos) []*Transcript {
	tree, ok := c.trees[pos.Ref]
	if !ok {
		return nil
	}
	result := tree.FindOverlaps(pos.Pos, pos.Pos+1)
	sortByID(result)
	return result
}

// PositionsAt returns the transcript coordinate of pos in every transcript on
// the same strand whose exons contain it.
func (c *Catalog) PositionsAt(pos locus.Pos) []Position {
	var result []Position
	for _, t := range c.FindTranscripts(pos) {
		offset, strand, ok := t.Loc.ProjectInto(pos)
		if ok && strand == locus.Forward {
			result = append(result, Position{Transcript: t, Pos: offset})
		}
	}
	return result
}

// TranscriptCount returns the total number of transcripts in the catalog.
func (c *Catalog) TranscriptCount() int {
	return len(c.transcripts)
}

// GeneCount returns the number of distinct genes.
func (c *Catalog) GeneCount() int {
	return len(c.genes)
}

// Chromosomes returns a sorted list of reference sequences with transcripts.
func (c *Catalog) Chromosomes() []string {
	chroms := make([]string, 0, len(c.trees))
	for ref := range c.trees {
		chroms = append(chroms, ref.String())
	}
	sort.Strings(chroms)
	return chroms
}

// GroupByGene partitions transcripts by gene. Group order is unspecified.
func GroupByGene(trxs []*Transcript) map[locus.Name][]*Transcript {
	groups := make(map[locus.Name][]*Transcript)
	for _, t := range trxs {
		groups[t.Gene] = append(groups[t.Gene], t)
	}
	return groups
}

func sortByID(trxs []*Transcript) {
	sort.Slice(trxs, func(i, j int) bool {
		return trxs[i].ID.String() < trxs[j].ID.String()
	})
}
