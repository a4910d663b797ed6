package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/ribo-framing/internal/align"
	"github.com/inodb/ribo-framing/internal/duckdb"
	"github.com/inodb/ribo-framing/internal/output"
)

const testBED = "chr01\t1000\t2000\tYAL.1\t0\t+\t1100\t1900\t0\t1\t1000,\t0,\n"

const testGenes = "YAL.1\tYAL\n"

// writeInputs writes an annotation, a gene table and a SAM file with one
// record per outcome the annotation can produce, returning their paths.
func writeInputs(t *testing.T) (dir, bed, genes, samPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("HOME", dir)

	bed = filepath.Join(dir, "genes.bed")
	require.NoError(t, os.WriteFile(bed, []byte(testBED), 0o644))
	genes = filepath.Join(dir, "genes.txt")
	require.NoError(t, os.WriteFile(genes, []byte(testGenes), 0o644))

	var b strings.Builder
	b.WriteString("@HD\tVN:1.6\tSO:unsorted\n")
	b.WriteString("@SQ\tSN:chr01\tLN:100000\n")
	b.WriteString("good\t0\tchr01\t1201\t255\t28M\t*\t0\t0\t" + strings.Repeat("A", 28) + "\t*\tNH:i:1\n")
	b.WriteString("unmapped\t4\t*\t0\t0\t*\t*\t0\t0\tAAAA\t*\n")
	b.WriteString("multi\t0\tchr01\t1201\t255\t28M\t*\t0\t0\t" + strings.Repeat("A", 28) + "\t*\tNH:i:2\tHI:i:1\n")
	b.WriteString("short\t0\tchr01\t1201\t255\t20M\t*\t0\t0\t" + strings.Repeat("A", 20) + "\t*\n")
	b.WriteString("intergenic\t0\tchr01\t5001\t255\t28M\t*\t0\t0\t" + strings.Repeat("A", 28) + "\t*\n")
	samPath = filepath.Join(dir, "sample.sam")
	require.NoError(t, os.WriteFile(samPath, []byte(b.String()), 0o644))
	return dir, bed, genes, samPath
}

func readTable(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows [][]string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		rows = append(rows, strings.Split(line, "\t"))
	}
	return rows
}

func findRow(rows [][]string, first string) []string {
	for _, row := range rows {
		if row[0] == first {
			return row
		}
	}
	return nil
}

func TestFramingEndToEnd(t *testing.T) {
	for _, workers := range []string{"1", "3"} {
		t.Run("workers "+workers, func(t *testing.T) {
			dir, bed, genes, samPath := writeInputs(t)
			prefix := filepath.Join(dir, "wt_rep1")
			annotated := filepath.Join(dir, "annotated.sam")
			db := filepath.Join(dir, "stats.duckdb")

			var stdout, stderr bytes.Buffer
			code := run([]string{"framing",
				"-b", bed, "-g", genes, "-o", prefix,
				"-a", annotated, "--stats-db", db, "-j", workers,
				samPath}, &stdout, &stderr)
			require.Equal(t, ExitSuccess, code, stderr.String())

			outcomes := readTable(t, prefix+output.StatsSuffix)
			assert.Equal(t, []string{"Category", "Count", "FracAlign", "FracAnnot"}, outcomes[0])
			assert.Equal(t, []string{"NoHit", "1", "0.2000", "-"}, findRow(outcomes, "NoHit"))
			assert.Equal(t, []string{"MultiHit", "1", "0.2000", "-"}, findRow(outcomes, "MultiHit"))
			assert.Equal(t, []string{"TooShort", "1", "0.2000", "-"}, findRow(outcomes, "TooShort"))
			assert.Equal(t, []string{"NoGene", "1", "0.2000", "0.5000"}, findRow(outcomes, "NoGene"))
			assert.Equal(t, []string{"Good", "1", "0.2000", "0.5000"}, findRow(outcomes, "Good"))
			assert.Equal(t, []string{"Annotated", "2", "0.4000", "1.0000"}, findRow(outcomes, "Annotated"))
			assert.Equal(t, []string{"Total", "5", "1.0000", "-"}, findRow(outcomes, "Total"))

			frames := readTable(t, prefix+output.FrameLengthSuffix)
			assert.Equal(t, []string{"28", "0", "1", "0", "1.5850"}, findRow(frames, "28"))
			assert.Equal(t, []string{"27", "0", "0", "0", "NA"}, findRow(frames, "27"))

			start := readTable(t, prefix+output.AroundStartSuffix)
			require.NotEmpty(t, start)
			col := -1
			for i, label := range start[0] {
				if label == "28" {
					col = i
				}
			}
			require.Positive(t, col)
			assert.Equal(t, "1", findRow(start, "100")[col])
			assert.Equal(t, "0", findRow(start, "99")[col])
			assert.Len(t, start, 1+201)

			// vsEnd is -700, outside the window around the CDS end.
			for _, row := range readTable(t, prefix+output.AroundEndSuffix)[1:] {
				for _, n := range row[1:] {
					assert.Equal(t, "0", n, row[0])
				}
			}

			r, err := align.Open(annotated, 1)
			require.NoError(t, err)
			defer r.Close()
			var tags []string
			for {
				rec, err := r.Next()
				require.NoError(t, err)
				if rec == nil {
					break
				}
				aux := rec.AuxFields.Get(align.AnnotationTag)
				require.NotNil(t, aux, rec.Name)
				tags = append(tags, rec.Name+"="+aux.Value().(string))
			}
			assert.Equal(t, []string{
				"good=Good/YAL/100/-700/1",
				"unmapped=NoHit",
				"multi=MultiHit",
				"short=TooShort",
				"intergenic=NoGene",
			}, tags)

			store, err := duckdb.Open(db)
			require.NoError(t, err)
			defer store.Close()
			samples, err := store.Samples()
			require.NoError(t, err)
			assert.Equal(t, []string{"wt_rep1"}, samples)
			counts, err := store.OutcomeCounts("wt_rep1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), counts["Good"])
			assert.Equal(t, int64(1), counts["NoHit"])
			frame, err := store.FrameCounts("wt_rep1", "28")
			require.NoError(t, err)
			assert.Equal(t, [3]int64{0, 1, 0}, frame)
		})
	}
}

func TestFramingCountMulti(t *testing.T) {
	dir, bed, _, samPath := writeInputs(t)
	prefix := filepath.Join(dir, "multi")

	var stdout, stderr bytes.Buffer
	code := run([]string{"framing", "--count-multi", "-b", bed, "-o", prefix, samPath}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	outcomes := readTable(t, prefix+output.StatsSuffix)
	assert.Equal(t, "0", findRow(outcomes, "MultiHit")[1])
	// Without a gene table the transcript name stands for the gene.
	assert.Equal(t, "2", findRow(outcomes, "Good")[1])
}

func TestFramingConfigFromEnvironment(t *testing.T) {
	dir, bed, _, samPath := writeInputs(t)
	prefix := filepath.Join(dir, "narrow")
	t.Setenv("RIBO_FRAMING_FRAMING_LENGTHS", "29,34")

	var stdout, stderr bytes.Buffer
	code := run([]string{"framing", "-b", bed, "-o", prefix, samPath}, &stdout, &stderr)
	require.Equal(t, ExitSuccess, code, stderr.String())

	outcomes := readTable(t, prefix+output.StatsSuffix)
	// The length filter runs before the gene lookup.
	assert.Equal(t, "3", findRow(outcomes, "TooShort")[1])
	assert.Equal(t, "0", findRow(outcomes, "Good")[1])
}

func TestFramingErrors(t *testing.T) {
	dir, bed, _, samPath := writeInputs(t)
	prefix := filepath.Join(dir, "out")

	tests := []struct {
		name string
		args []string
		code int
		msg  string
	}{
		{"no input", []string{"framing", "-b", bed, "-o", prefix}, ExitUsage, "accepts 1 arg"},
		{"missing bed", []string{"framing", "-o", prefix, samPath}, ExitUsage, "--bed and --output are required"},
		{"unknown flag", []string{"framing", "--frobnicate", samPath}, ExitUsage, "unknown flag"},
		{"bad lengths", []string{"framing", "-b", bed, "-o", prefix, "-l", "26", samPath}, ExitError, "lengths"},
		{"bad workers", []string{"framing", "-b", bed, "-o", prefix, "-j", "0", samPath}, ExitError, "workers"},
		{"bad profile", []string{"framing", "-b", bed, "-o", prefix, "--profile", "block", samPath}, ExitError, "profile"},
		{"missing input", []string{"framing", "-b", bed, "-o", prefix, filepath.Join(dir, "nope.bam")}, ExitError, "open alignment file"},
		{"missing annotation", []string{"framing", "-b", filepath.Join(dir, "nope.bed"), "-o", prefix, samPath}, ExitError, "nope.bed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr.String(), tt.msg)
		})
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		a, b    int
		wantErr bool
	}{
		{"26,34", 26, 34, false},
		{"34,-31", 34, -31, false},
		{" -100 , 100 ", -100, 100, false},
		{"26", 0, 0, true},
		{"26,x", 0, 0, true},
		{",34", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, b, err := parsePair(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.a, a)
			assert.Equal(t, tt.b, b)
		})
	}
}

func TestSummary(t *testing.T) {
	dir, bed, _, samPath := writeInputs(t)
	db := filepath.Join(dir, "stats.duckdb")

	for _, sample := range []string{"a", "b"} {
		var stdout, stderr bytes.Buffer
		code := run([]string{"framing", "-b", bed, "-o", filepath.Join(dir, sample), "--stats-db", db, samPath}, &stdout, &stderr)
		require.Equal(t, ExitSuccess, code, stderr.String())
	}

	var stdout, stderr bytes.Buffer
	require.Equal(t, ExitSuccess, run([]string{"summary", db}, &stdout, &stderr), stderr.String())
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Sample\tNoHit\tMultiHit\t"))
	assert.True(t, strings.HasSuffix(lines[0], "\tGood"))
	assert.True(t, strings.HasPrefix(lines[1], "a\t1\t1\t1\t"))
	assert.True(t, strings.HasPrefix(lines[2], "b\t1\t1\t1\t"))

	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, ExitError, run([]string{"summary", filepath.Join(dir, "missing.duckdb")}, &stdout, &stderr))
}

func TestConfigSetGet(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	cfg := filepath.Join(dir, "ribo.yaml")

	var stdout, stderr bytes.Buffer
	require.Equal(t, ExitSuccess, run([]string{"--config", cfg, "config", "set", "framing.cdsbody", "30,-30"}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "Set framing.cdsbody = 30,-30")

	stdout.Reset()
	require.Equal(t, ExitSuccess, run([]string{"--config", cfg, "config", "get", "framing.cdsbody"}, &stdout, &stderr), stderr.String())
	assert.Equal(t, "30,-30\n", stdout.String())

	stdout.Reset()
	assert.Equal(t, ExitError, run([]string{"--config", cfg, "config", "get", "no.such.key"}, &stdout, &stderr))
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, ExitSuccess, run([]string{"version"}, &stdout, &stderr))
	assert.Equal(t, "ribo-framing version dev (none) built unknown\n", stdout.String())

	assert.Equal(t, ExitUsage, run([]string{"version", "extra"}, &stdout, &stderr))
}
