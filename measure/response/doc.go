// Package response measures filterbanks from their impulse responses.
//
// [Capture] drives a fresh engine with a unit impulse on every channel.
// [Spectrum] turns the captured responses into FFT magnitude responses, and
// [Analyze] reduces each channel to a few numbers: peak frequency and gain,
// -3 dB bandwidth, decay time and energy centroid.
//
//	t, _ := gammatone.Exact{CF: cfs}.Design(unit.KHz(44.1))
//	ms, err := response.Analyze(t, response.WithFFTSize(8192))
//	fmt.Printf("%.0f Hz, %.1f dB\n", ms[0].PeakFrequency, ms[0].PeakGainDB)
package response
