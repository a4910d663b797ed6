package cache

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneMap_Parse(t *testing.T) {
	m := NewGeneMap()
	input := "# comment\nT1\tG1\nT2\tG1\n\nT3\nT4\t\n"
	require.NoError(t, m.Parse(strings.NewReader(input)))

	tests := []struct {
		transcript string
		gene       string
		keep       bool
	}{
		{"T1", "G1", true},
		{"T2", "G1", true},
		{"T3", "", false},
		{"T4", "", false},
		{"T5", "T5", true},
	}
	for _, tt := range tests {
		gene, keep := m.Gene(tt.transcript)
		assert.Equal(t, tt.keep, keep, tt.transcript)
		assert.Equal(t, tt.gene, gene, tt.transcript)
	}
	assert.Equal(t, 4, m.Len())
}

func TestGeneMap_LaterLineWins(t *testing.T) {
	m := NewGeneMap()
	require.NoError(t, m.Parse(strings.NewReader("T1\nT1\tG1\n")))
	gene, keep := m.Gene("T1")
	assert.True(t, keep)
	assert.Equal(t, "G1", gene)
}

func TestGeneMap_Malformed(t *testing.T) {
	m := NewGeneMap()
	err := m.Parse(strings.NewReader("T1\tG1\nT2\tG2\textra\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestGeneMap_Nil(t *testing.T) {
	var m *GeneMap
	gene, keep := m.Gene("T1")
	assert.True(t, keep)
	assert.Equal(t, "T1", gene)
}

func TestLoadGeneMap_Compressed(t *testing.T) {
	dir := t.TempDir()

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write([]byte("T1\tG1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	gzPath := filepath.Join(dir, "genes.txt.gz")
	require.NoError(t, os.WriteFile(gzPath, gz.Bytes(), 0o644))

	var lz bytes.Buffer
	lw := lz4.NewWriter(&lz)
	_, err = lw.Write([]byte("T2\n"))
	require.NoError(t, err)
	require.NoError(t, lw.Close())
	lzPath := filepath.Join(dir, "genes.txt.lz4")
	require.NoError(t, os.WriteFile(lzPath, lz.Bytes(), 0o644))

	plainPath := filepath.Join(dir, "genes.txt")
	require.NoError(t, os.WriteFile(plainPath, []byte("T3\tG3\n"), 0o644))

	m, err := LoadGeneMap(gzPath, lzPath, plainPath)
	require.NoError(t, err)

	gene, keep := m.Gene("T1")
	assert.True(t, keep)
	assert.Equal(t, "G1", gene)
	_, keep = m.Gene("T2")
	assert.False(t, keep)
	gene, _ = m.Gene("T3")
	assert.Equal(t, "G3", gene)

	_, err = LoadGeneMap(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestBEDLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genes.bed.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testBED))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	genes := NewGeneMap()
	require.NoError(t, genes.Parse(strings.NewReader("BBB\n")))

	c := New()
	loader := NewBEDLoader(path)
	loader.SetGeneMap(genes)
	require.NoError(t, loader.Load(c))
	assert.Equal(t, 4, c.TranscriptCount())
	assert.Nil(t, c.GetTranscript("BBB"))

	assert.Error(t, NewBEDLoader(filepath.Join(dir, "missing.bed")).Load(New()))
}
