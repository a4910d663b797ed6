package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/ribo-framing/internal/cache"
	"github.com/inodb/ribo-framing/internal/locus"
)

func mustSpliced(t *testing.T, s string) *locus.Spliced {
	t.Helper()
	loc, err := locus.ParseSpliced(s)
	require.NoError(t, err)
	return loc
}

func mustTranscript(t *testing.T, gene, id, loc string, cds *cache.CDSRange) *cache.Transcript {
	t.Helper()
	trx, err := cache.NewTranscript(locus.Intern(gene), locus.Intern(id), mustSpliced(t, loc), cds)
	require.NoError(t, err)
	return trx
}

func TestBodyFrame(t *testing.T) {
	trx := mustTranscript(t, "G", "G.1", "chr01:0-1200(+)", &cache.CDSRange{Start: 83, End: 1000})
	body := BodyWindow{AfterStart: 15, BeforeEnd: -15}

	tests := []struct {
		pos   int
		frame int
		ok    bool
	}{
		{83, 0, false},
		{97, 0, false},
		{98, 0, true},
		{99, 1, true},
		{100, 2, true},
		{101, 0, true},
		{985, 2, true},
		{986, 0, false},
		{1100, 0, false},
	}
	for _, tt := range tests {
		frame, ok := BodyFrame(body, cache.Position{Transcript: trx, Pos: tt.pos})
		assert.Equal(t, tt.ok, ok, "pos %d", tt.pos)
		assert.Equal(t, tt.frame, frame, "pos %d", tt.pos)
	}

	nc := mustTranscript(t, "N", "N.1", "chr01:0-1200(+)", nil)
	_, ok := BodyFrame(body, cache.Position{Transcript: nc, Pos: 500})
	assert.False(t, ok)
}

func TestFootprintPosition(t *testing.T) {
	trx := mustTranscript(t, "S", "S.1", "chr04:1000-1100;1400-1500(+)", &cache.CDSRange{Start: 0, End: 200})

	p, ok := FootprintPosition(mustSpliced(t, "chr04:1080-1100;1400-1408(+)"), trx)
	require.True(t, ok)
	assert.Equal(t, 80, p.Pos)

	_, ok = FootprintPosition(mustSpliced(t, "chr04:1080-1108(+)"), trx)
	assert.False(t, ok, "read running into the intron")

	_, ok = FootprintPosition(mustSpliced(t, "chr04:1080-1100;1400-1408(-)"), trx)
	assert.False(t, ok, "opposite strand")

	rev := mustTranscript(t, "R", "R.1", "chr07:1000-2000(-)", &cache.CDSRange{Start: 100, End: 900})
	p, ok = FootprintPosition(mustSpliced(t, "chr07:1700-1728(-)"), rev)
	require.True(t, ok)
	assert.Equal(t, 272, p.Pos)
}

func TestFrameGene(t *testing.T) {
	body := BodyWindow{AfterStart: 15, BeforeEnd: -15}
	fp := mustSpliced(t, "chr05:1500-1528(+)")

	t.Run("single transcript", func(t *testing.T) {
		trxs := []*cache.Transcript{
			mustTranscript(t, "A", "A.1", "chr05:1000-2000(+)", &cache.CDSRange{Start: 0, End: 1000}),
		}
		outcome, framing := FrameGene(body, trxs, fp)
		assert.Equal(t, Good, outcome)
		require.NotNil(t, framing)
		assert.Equal(t, "A", framing.Gene.String())
		assert.Equal(t, Some(500), framing.VsCDSStart)
		assert.Equal(t, Some(-500), framing.VsCDSEnd)
		assert.Equal(t, Some(2), framing.Frame)
	})

	t.Run("frames disagree", func(t *testing.T) {
		trxs := []*cache.Transcript{
			mustTranscript(t, "A", "A.1", "chr05:1000-2000(+)", &cache.CDSRange{Start: 0, End: 1000}),
			mustTranscript(t, "A", "A.2", "chr05:1000-2000(+)", &cache.CDSRange{Start: 1, End: 1000}),
		}
		outcome, framing := FrameGene(body, trxs, fp)
		assert.Equal(t, Ambig, outcome)
		assert.Nil(t, framing)
	})

	t.Run("frames agree, starts differ", func(t *testing.T) {
		trxs := []*cache.Transcript{
			mustTranscript(t, "A", "A.1", "chr05:1000-2000(+)", &cache.CDSRange{Start: 0, End: 1000}),
			mustTranscript(t, "A", "A.2", "chr05:1000-2000(+)", &cache.CDSRange{Start: 3, End: 1000}),
		}
		outcome, framing := FrameGene(body, trxs, fp)
		assert.Equal(t, Good, outcome)
		require.NotNil(t, framing)
		assert.False(t, framing.VsCDSStart.Valid)
		assert.Equal(t, Some(-500), framing.VsCDSEnd)
		assert.Equal(t, Some(2), framing.Frame)
	})

	t.Run("incompatible transcript ignored", func(t *testing.T) {
		trxs := []*cache.Transcript{
			mustTranscript(t, "A", "A.1", "chr05:1000-2000(+)", &cache.CDSRange{Start: 0, End: 1000}),
			mustTranscript(t, "A", "A.2", "chr05:1000-1510;1600-2000(+)", &cache.CDSRange{Start: 1, End: 900}),
		}
		outcome, framing := FrameGene(body, trxs, fp)
		assert.Equal(t, Good, outcome)
		require.NotNil(t, framing)
		assert.Equal(t, Some(500), framing.VsCDSStart)
		assert.Equal(t, Some(2), framing.Frame)
	})

	t.Run("no compatible transcript", func(t *testing.T) {
		trxs := []*cache.Transcript{
			mustTranscript(t, "A", "A.2", "chr05:1000-1510;1600-2000(+)", &cache.CDSRange{Start: 1, End: 900}),
		}
		outcome, framing := FrameGene(body, trxs, fp)
		assert.Equal(t, NoCompatible, outcome)
		assert.Nil(t, framing)
	})

	t.Run("outside body", func(t *testing.T) {
		trxs := []*cache.Transcript{
			mustTranscript(t, "A", "A.1", "chr05:1000-2000(+)", &cache.CDSRange{Start: 495, End: 1000}),
		}
		outcome, framing := FrameGene(body, trxs, fp)
		assert.Equal(t, Good, outcome)
		require.NotNil(t, framing)
		assert.Equal(t, Some(5), framing.VsCDSStart)
		assert.False(t, framing.Frame.Valid)
	})
}

func TestAllIfSame(t *testing.T) {
	assert.Equal(t, OptInt{}, allIfSame(nil))
	assert.Equal(t, Some(4), allIfSame([]int{4}))
	assert.Equal(t, Some(4), allIfSame([]int{4, 4, 4}))
	assert.Equal(t, OptInt{}, allIfSame([]int{4, 4, 5}))
}

func TestResultAux(t *testing.T) {
	gene := locus.Intern("YAL")
	asite := locus.Pos{Ref: locus.Intern("chr01"), Pos: 1215, Strand: locus.Forward}

	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"no hit", Result{Outcome: NoHit}, "NoHit"},
		{"noncoding", Result{Outcome: NoncodingOnly, Length: 28}, "Noncoding"},
		{"good", Result{Outcome: Good, Length: 28, Framing: &GeneFraming{
			Gene: gene, VsCDSStart: Some(100), VsCDSEnd: Some(-700), Frame: Some(1),
		}}, "Good/YAL/100/-700/1"},
		{"withheld", Result{Outcome: Good, Length: 28, Framing: &GeneFraming{
			Gene: gene, VsCDSEnd: Some(-700),
		}}, "Good/YAL/*/-700/*"},
		{"with A site", Result{Outcome: Good, Length: 28, Framing: &GeneFraming{
			Gene: gene, VsCDSStart: Some(100), VsCDSEnd: Some(-700), Frame: Some(1),
			WithASite: true, ASite: &asite, ASiteVsStart: Some(115),
		}}, "Good/YAL/100/-700/1/chr01:1215(+)/115"},
		{"no A-site offset", Result{Outcome: Good, Length: 29, Framing: &GeneFraming{
			Gene: gene, VsCDSStart: Some(100), VsCDSEnd: Some(-700), Frame: Some(1),
			WithASite: true,
		}}, "Good/YAL/100/-700/1/*/*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Aux())
		})
	}
}

func TestOutcomes(t *testing.T) {
	all := Outcomes()
	require.Len(t, all, 11)
	assert.Equal(t, NoHit, all[0])
	assert.Equal(t, Good, all[len(all)-1])

	for _, o := range all {
		assert.Equal(t, o >= NoGene, o.IsAnnotated(), o.String())
	}
	assert.Equal(t, "Outcome(42)", Outcome(42).String())
}
