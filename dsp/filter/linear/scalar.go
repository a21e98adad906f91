package linear

import (
	"sync"

	"github.com/cwbudde/algo-hears/dsp/stream"
)

type scalarScratch struct {
	buf []float64
	z   []float64
}

func (w *scalarScratch) grow(frames, order int) {
	if cap(w.buf) < frames {
		w.buf = make([]float64, frames)
	}
	w.buf = w.buf[:frames]
	if cap(w.z) < order {
		w.z = make([]float64, order)
	}
}

// processScalar gathers each channel into a contiguous buffer, runs every
// stage over it and scatters the result. Channel ranges are independent and
// may run on separate goroutines.
func (e *Engine) processScalar(dst stream.Block, in []float64, shared bool) {
	channels := e.tensor.Channels
	workers := min(e.cfg.Workers, channels)
	maxOrder := 0
	for _, st := range e.tensor.Stages {
		maxOrder = max(maxOrder, st.Order)
	}
	for len(e.workers) < workers {
		e.workers = append(e.workers, scalarScratch{})
	}
	for i := range workers {
		e.workers[i].grow(dst.Frames, maxOrder)
	}

	if workers <= 1 {
		e.scalarRange(dst, in, shared, 0, channels, &e.workers[0])
		return
	}

	var wg sync.WaitGroup
	per := (channels + workers - 1) / workers
	for w := range workers {
		lo := w * per
		hi := min(lo+per, channels)
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(scr *scalarScratch) {
			defer wg.Done()
			e.scalarRange(dst, in, shared, lo, hi, scr)
		}(&e.workers[w])
	}
	wg.Wait()
}

func (e *Engine) scalarRange(dst stream.Block, in []float64, shared bool, lo, hi int, scr *scalarScratch) {
	channels := e.tensor.Channels
	buf := scr.buf
	for ch := lo; ch < hi; ch++ {
		if shared {
			copy(buf, in)
		} else {
			for i := range buf {
				buf[i] = in[i*channels+ch]
			}
		}
		for s, st := range e.tensor.Stages {
			z := scr.z[:st.Order]
			for k := range z {
				z[k] = e.state.z[e.state.index(s, k, ch)]
			}
			filterStage(st.B[ch], st.A[ch], z, buf)
			for k, v := range z {
				e.state.z[e.state.index(s, k, ch)] = v
			}
		}
		for i, v := range buf {
			dst.Data[i*channels+ch] = v
		}
	}
}

// filterStage runs one normalized section over buf in place, updating the
// delay line z (len(z) == order).
func filterStage(b, a, z, buf []float64) {
	switch len(z) {
	case 0:
		b0 := b[0]
		for i, x := range buf {
			buf[i] = b0 * x
		}
	case 1:
		b0, b1, a1 := b[0], b[1], a[1]
		z0 := z[0]
		for i, x := range buf {
			y := b0*x + z0
			z0 = b1*x - a1*y
			buf[i] = y
		}
		z[0] = z0
	case 2:
		b0, b1, b2 := b[0], b[1], b[2]
		a1, a2 := a[1], a[2]
		z0, z1 := z[0], z[1]
		for i, x := range buf {
			y := b0*x + z0
			z0 = b1*x + z1 - a1*y
			z1 = b2*x - a2*y
			buf[i] = y
		}
		z[0], z[1] = z0, z1
	default:
		n := len(z)
		for i, x := range buf {
			y := b[0]*x + z[0]
			for k := 0; k < n-1; k++ {
				z[k] = b[k+1]*x + z[k+1] - a[k+1]*y
			}
			z[n-1] = b[n]*x - a[n]*y
			buf[i] = y
		}
	}
}
