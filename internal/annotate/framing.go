package annotate

import (
	"github.com/inodb/ribo-framing/internal/cache"
	"github.com/inodb/ribo-framing/internal/locus"
)

// BodyWindow bounds the part of a CDS where the reading frame is scored:
// AfterStart <= pos - cdsStart and pos - cdsEnd <= BeforeEnd. BeforeEnd is
// usually negative.
type BodyWindow struct {
	AfterStart int
	BeforeEnd  int
}

// BodyFrame returns the codon register of p when it lies inside the CDS body.
func BodyFrame(body BodyWindow, p cache.Position) (int, bool) {
	vsStart, ok := p.OffsetFromCDSStart()
	if !ok {
		return 0, false
	}
	vsEnd, _ := p.OffsetFromCDSEnd()
	if vsStart < body.AfterStart || vsEnd > body.BeforeEnd {
		return 0, false
	}
	return p.CDSFrame()
}

// FootprintPosition projects the 5' end of fp into trx. It fails unless fp is
// splice-compatible with the transcript.
func FootprintPosition(fp *locus.Spliced, trx *cache.Transcript) (cache.Position, bool) {
	if !locus.SpliceCompatible(trx.Loc, fp) {
		return cache.Position{}, false
	}
	offset, strand, ok := trx.Loc.ProjectInto(fp.FirstPos())
	if !ok || strand != locus.Forward {
		return cache.Position{}, false
	}
	return cache.Position{Transcript: trx, Pos: offset}, true
}

// FrameGene frames fp against the transcripts of one gene. The outcome is
// NoCompatible when no transcript is splice-compatible, Ambig when compatible
// transcripts put the footprint in different frames, and Good otherwise.
// Offsets are reported only when every compatible transcript agrees.
func FrameGene(body BodyWindow, trxs []*cache.Transcript, fp *locus.Spliced) (Outcome, *GeneFraming) {
	var positions []cache.Position
	for _, trx := range trxs {
		if p, ok := FootprintPosition(fp, trx); ok {
			positions = append(positions, p)
		}
	}
	if len(positions) == 0 {
		return NoCompatible, nil
	}

	var vsStart, vsEnd, frames []int
	for _, p := range positions {
		if v, ok := p.OffsetFromCDSStart(); ok {
			vsStart = append(vsStart, v)
		}
		if v, ok := p.OffsetFromCDSEnd(); ok {
			vsEnd = append(vsEnd, v)
		}
		if f, ok := BodyFrame(body, p); ok {
			frames = append(frames, f)
		}
	}

	frame := allIfSame(frames)
	if len(frames) > 0 && !frame.Valid {
		return Ambig, nil
	}
	return Good, &GeneFraming{
		Gene:       trxs[0].Gene,
		VsCDSStart: allIfSame(vsStart),
		VsCDSEnd:   allIfSame(vsEnd),
		Frame:      frame,
	}
}

// allIfSame returns the common value of vs, or a withheld OptInt when vs is
// empty or holds more than one distinct value.
func allIfSame(vs []int) OptInt {
	if len(vs) == 0 {
		return OptInt{}
	}
	for _, v := range vs[1:] {
		if v != vs[0] {
			return OptInt{}
		}
	}
	return Some(vs[0])
}

// aSiteVsStart locates an A-site position in every compatible transcript and
// returns its offset from the CDS start when all of them agree.
func aSiteVsStart(asite locus.Pos, trxs []*cache.Transcript, fp *locus.Spliced) OptInt {
	var offsets []int
	for _, trx := range trxs {
		if !locus.SpliceCompatible(trx.Loc, fp) {
			continue
		}
		pos, strand, ok := trx.Loc.ProjectInto(asite)
		if !ok || strand != locus.Forward {
			continue
		}
		if v, ok := (cache.Position{Transcript: trx, Pos: pos}).OffsetFromCDSStart(); ok {
			offsets = append(offsets, v)
		}
	}
	return allIfSame(offsets)
}
