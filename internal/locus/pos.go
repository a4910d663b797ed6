package locus

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a single stranded base on a reference sequence (0-based).
type Pos struct {
	Ref    Name
	Pos    int
	Strand Strand
}

// String formats the position as "chr01:1000(+)".
func (p Pos) String() string {
	return fmt.Sprintf("%s:%d(%s)", p.Ref, p.Pos, p.Strand)
}

// ParsePos parses the "chr01:1000(+)" form produced by String.
func ParsePos(s string) (Pos, error) {
	ref, body, strand, err := splitLocation(s)
	if err != nil {
		return Pos{}, err
	}
	n, err := strconv.Atoi(body)
	if err != nil {
		return Pos{}, fmt.Errorf("parsing position %q: %w", s, err)
	}
	return Pos{Ref: Intern(ref), Pos: n, Strand: strand}, nil
}

// splitLocation breaks "ref:body(s)" into its three parts.
func splitLocation(s string) (string, string, Strand, error) {
	colon := strings.LastIndexByte(s, ':')
	if colon <= 0 {
		return "", "", 0, fmt.Errorf("location %q: missing reference name", s)
	}
	rest := s[colon+1:]
	open := strings.IndexByte(rest, '(')
	if open < 0 || !strings.HasSuffix(rest, ")") {
		return "", "", 0, fmt.Errorf("location %q: missing strand", s)
	}
	strand, err := ParseStrand(rest[open+1 : len(rest)-1])
	if err != nil {
		return "", "", 0, fmt.Errorf("location %q: %w", s, err)
	}
	return s[:colon], rest[:open], strand, nil
}
