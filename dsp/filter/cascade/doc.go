// Package cascade holds per-channel filter coefficients as an ordered
// cascade of stages.
//
// A [Tensor] is indexed by (stage, channel, coefficient position). Every
// stage has one numerator row b[0..order] and one denominator row
// a[0..order] per channel; designers normalize a[0] to 1. Shorter sections
// are padded explicitly with zeros so that all channels of a stage share one
// width.
//
// [Concat] is the cascade assembler: it joins tensors designed for the same
// channel set along the stage axis, preserving stage order. The runtime that
// executes a tensor lives in dsp/filter/linear.
package cascade
