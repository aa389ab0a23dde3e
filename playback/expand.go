// Package playback turns notated structure into playback structure:
// repeat expansion from barline markers into a linear measure order, and
// conversion of notated positions into absolute ticks for export.
package playback

import "github.com/quaverlabs/partita/model"

// ExpandRepeats converts a measure sequence with repeat barlines into
// the order measures are actually played, as indices into the input.
// The same physical measure may appear multiple times. A sequence with
// no repeat markers expands to the identity order.
//
// The scan is a single index-based forward pass: from the current
// measure, look ahead for the nearest backward repeat, aborting early
// if a new forward repeat opens first (that one belongs to an inner or
// sibling region and is not consumed by the current scan). When a
// backward repeat is found, its matching forward marker is located by
// scanning back toward the current index, defaulting to the current
// index itself for repeats from the top of an unmarked region.
func ExpandRepeats(measures []model.Measure) []int {
	order := make([]int, 0, len(measures))
	i := 0
	for i < len(measures) {
		end := -1
		for k := i; k < len(measures); k++ {
			if k > i && measures[k].ForwardRepeat() {
				break
			}
			if measures[k].BackwardRepeat() != nil {
				end = k
				break
			}
		}
		if end < 0 {
			order = append(order, i)
			i++
			continue
		}

		start := i
		for k := end; k >= i; k-- {
			if measures[k].ForwardRepeat() {
				start = k
				break
			}
		}

		times := measures[end].BackwardRepeat().Count()
		for t := 0; t < times; t++ {
			for k := start; k <= end; k++ {
				order = append(order, k)
			}
		}
		i = end + 1
	}
	return order
}
