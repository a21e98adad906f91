// Package gammatone designs gammatone auditory filterbanks.
//
// [Exact] is Slaney's fourth-order gammatone realized as four cascaded
// second-order sections with unity gain at each center frequency.
// [Parallel] is Meddis' gammatone: one resonator replicated Order times.
//
// Both designers implement cascade.Designer:
//
//	cfs, _ := erb.Space(unit.Hz(100), unit.Hz(8000), 64)
//	t, err := gammatone.Exact{CF: cfs}.Design(unit.Hz(44100))
package gammatone
