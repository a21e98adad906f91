// Package stream provides the pull-based block interface that connects
// signal sources and filterbanks.
//
// A [Block] stores samples frame-major: each frame holds one sample per
// channel. A [Source] hands out blocks on demand through Read; filterbanks
// consume one Source and are themselves a Source, so they can be chained:
//
//	gen, _ := stream.NewGenerator(unit.Hz(44100), stream.Impulse, 4410)
//	src, _ := stream.Broadcast(gen, 32)
//	bank, _ := linear.New(src, gammatone.Exact{CF: cfs})
//	out, _ := stream.ReadAll(bank, 512)
package stream
