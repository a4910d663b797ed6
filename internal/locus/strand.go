package locus

import "fmt"

// Strand is the orientation of a position or location on its reference.
type Strand int8

const (
	Forward Strand = 1
	Reverse Strand = -1
)

// ParseStrand parses "+" or "-".
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	}
	return 0, fmt.Errorf("invalid strand %q", s)
}

// Opposite returns the other strand.
func (s Strand) Opposite() Strand {
	return -s
}

// String returns "+" or "-".
func (s Strand) String() string {
	switch s {
	case Forward:
		return "+"
	case Reverse:
		return "-"
	}
	return "?"
}
