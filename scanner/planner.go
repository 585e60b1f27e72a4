package scanner

import "fmt"

// PortRange is a half-open interval of ports [Begin, End).
type PortRange struct {
	Begin int
	End   int
}

// Len returns the number of ports in the range.
func (r PortRange) Len() int {
	if r.End <= r.Begin {
		return 0
	}
	return r.End - r.Begin
}

func (r PortRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Begin, r.End)
}

// Plan splits [start, end) into the sub-ranges scanned one after another.
// A width of zero yields the whole range as a single batch. A positive width
// yields contiguous batches of that width, the last one possibly shorter so
// that no port is left out.
func Plan(start, end, width int) []PortRange {
	if end <= start {
		return nil
	}
	if width <= 0 {
		return []PortRange{{Begin: start, End: end}}
	}

	batches := make([]PortRange, 0, (end-start+width-1)/width)
	for begin := start; begin < end; begin += width {
		stop := begin + width
		if stop > end {
			stop = end
		}
		batches = append(batches, PortRange{Begin: begin, End: stop})
	}

	return batches
}
