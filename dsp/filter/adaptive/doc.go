// Package adaptive implements a bandpass filterbank whose center
// frequencies drift as independent Ornstein-Uhlenbeck processes.
//
// Every channel is one constant-skirt-gain bandpass section. On each update
// the center frequency fc of channel i moves by
//
//	fc += -fc/tau*dt + m/tau*dt + sqrt(2)*s/sqrt(tau)*N(0,1)*sqrt(dt)
//
// and is then clamped to [50 Hz, fs/2 - 1000 Hz]. The section coefficients
// are recomputed from the new fc and the filter state carries over, so the
// output is continuous across updates.
package adaptive
