// Package iir designs classical IIR filterbanks as cascades of second-order
// sections.
//
// The pipeline mirrors the usual analog route: an analog lowpass prototype
// (Butterworth, Chebyshev I and II, elliptic, Bessel) in zero-pole-gain
// form, a frequency transformation to the requested band, the bilinear
// transform with prewarping, and grouping of conjugate roots into order-2
// sections. [Auto] adds minimal-order selection from a passband/stopband
// tolerance scheme.
//
// Frequencies passed to [Sections] and [Auto] are on the 0..1 scale where 1
// is the Nyquist frequency. The designers [Spec], [Filter] and [Butterworth]
// take unit.Quantity frequencies and replicate the result across channels.
package iir
