package stream

import (
	"errors"
	"io"
	"testing"

	"github.com/cwbudde/algo-hears/dsp/unit"
)

func TestBlock_ChannelRoundTrip(t *testing.T) {
	b, err := FromChannels([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	if b.Frames != 3 || b.Channels != 2 {
		t.Fatalf("shape %dx%d", b.Frames, b.Channels)
	}
	want := []float64{1, 4, 2, 5, 3, 6}
	for i := range want {
		if b.Data[i] != want[i] {
			t.Fatalf("data[%d]=%v want %v", i, b.Data[i], want[i])
		}
	}
	if got := b.Channel(1, nil); got[0] != 4 || got[2] != 6 {
		t.Fatalf("channel 1 = %v", got)
	}
	if f := b.Frame(1); f[0] != 2 || f[1] != 5 {
		t.Fatalf("frame 1 = %v", f)
	}
}

func TestFromChannels_Ragged(t *testing.T) {
	_, err := FromChannels([][]float64{{1, 2}, {3}})
	if !errors.Is(err, ErrShape) {
		t.Fatalf("err=%v, want ErrShape", err)
	}
}

func TestSliceSource_ReadsInBlocks(t *testing.T) {
	src, err := NewMonoSource(unit.Hz(1000), []float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := src.Read(2)
	if b.Frames != 2 || b.Data[1] != 2 {
		t.Fatalf("first block %+v", b)
	}
	b, _ = src.Read(4)
	if b.Frames != 3 || b.Data[2] != 5 {
		t.Fatalf("second block %+v", b)
	}
	if _, err := src.Read(1); err != io.EOF {
		t.Fatalf("err=%v, want io.EOF", err)
	}
}

func TestSliceSource_RejectsNonFrequencyRate(t *testing.T) {
	_, err := NewMonoSource(unit.Second(1), []float64{1})
	if !errors.Is(err, unit.ErrDimension) {
		t.Fatalf("err=%v, want ErrDimension", err)
	}
}

func TestBroadcast(t *testing.T) {
	mono, _ := NewMonoSource(unit.Hz(8000), []float64{0.5, -1})
	src, err := Broadcast(mono, 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := src.Read(8)
	if err != nil {
		t.Fatal(err)
	}
	if b.Channels != 3 || b.Frames != 2 {
		t.Fatalf("shape %dx%d", b.Frames, b.Channels)
	}
	for c := 0; c < 3; c++ {
		if b.At(0, c) != 0.5 || b.At(1, c) != -1 {
			t.Fatalf("channel %d not broadcast: %v", c, b.Data)
		}
	}
}

func TestGenerator_Impulse(t *testing.T) {
	g, err := NewGenerator(unit.Hz(48000), Impulse, 10)
	if err != nil {
		t.Fatal(err)
	}
	all, err := ReadAll(g, 3)
	if err != nil {
		t.Fatal(err)
	}
	if all.Frames != 10 || all.Data[0] != 1 {
		t.Fatalf("impulse %v", all.Data)
	}
	for _, v := range all.Data[1:] {
		if v != 0 {
			t.Fatalf("impulse tail not zero: %v", all.Data)
		}
	}
}

func TestGenerator_NoiseDeterministic(t *testing.T) {
	a, _ := NewGenerator(unit.Hz(48000), WhiteNoise, 64, WithSeed(7))
	b, _ := NewGenerator(unit.Hz(48000), WhiteNoise, 64, WithSeed(7))
	x, _ := ReadAll(a, 16)
	y, _ := ReadAll(b, 64)
	for i := range x.Data {
		if x.Data[i] != y.Data[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, x.Data[i], y.Data[i])
		}
	}
}

func TestGenerator_SineRejectsBadFrequency(t *testing.T) {
	if _, err := NewGenerator(unit.Hz(1000), Sine, 10, WithFrequency(600)); err == nil {
		t.Fatal("expected error for sine above Nyquist")
	}
}
