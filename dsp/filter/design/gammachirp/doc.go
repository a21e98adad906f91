// Package gammachirp designs gammachirp auditory filterbanks.
//
// [IIR] follows Unoki et al. (2001): an exact gammatone cascade followed by
// asymmetric compensation sections ([Compensation]) that skew the passband
// with the chirp parameter c. [FIR] samples a fitted gammachirp impulse
// response into a single long FIR stage.
package gammachirp
