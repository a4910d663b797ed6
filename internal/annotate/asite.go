package annotate

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/inodb/ribo-framing/internal/cache"
	"github.com/inodb/ribo-framing/internal/locus"
)

var asiteLine = regexp.MustCompile(`^(\d+)[ \t]+(\d+)$`)

// ASites maps footprint length to the offset of the ribosomal A site from
// the footprint's 5' end.
type ASites struct {
	offsets map[int]int
}

// LoadASites reads an A-site offset table from a file.
func LoadASites(path string) (*ASites, error) {
	f, err := cache.OpenText(path)
	if err != nil {
		return nil, fmt.Errorf("open A-site table: %w", err)
	}
	defer f.Close()

	a, err := ParseASites(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ParseASites parses lines of "<length><TAB><offset>". Blank lines are
// skipped; any other line that is not two non-negative integers is an error.
func ParseASites(reader io.Reader) (*ASites, error) {
	a := &ASites{offsets: make(map[int]int)}
	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRightFunc(scanner.Text(), func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\r'
		})
		if line == "" {
			continue
		}

		m := asiteLine.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("line %d: bad A-site line %q", lineNum, line)
		}
		length, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad length: %w", lineNum, err)
		}
		offset, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad offset: %w", lineNum, err)
		}
		a.offsets[length] = offset
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan A-site table: %w", err)
	}
	return a, nil
}

// Offset returns the A-site offset for a footprint length. Lengths missing
// from the table give false, never a zero offset.
func (a *ASites) Offset(length int) (int, bool) {
	offset, ok := a.offsets[length]
	return offset, ok
}

// Len returns the number of lengths in the table.
func (a *ASites) Len() int {
	return len(a.offsets)
}

// ASite returns the genomic position of the A-site nucleotide of fp.
func (a *ASites) ASite(fp *locus.Spliced) (locus.Pos, bool) {
	offset, ok := a.Offset(fp.Length())
	if !ok {
		return locus.Pos{}, false
	}
	return fp.ProjectOutOf(offset)
}
