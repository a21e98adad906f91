package linear

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-hears/dsp/stream"
)

// processVector walks the block one frame at a time. Every stage updates
// whole channel vectors, so each vecmath call covers all channels.
func (e *Engine) processVector(dst stream.Block, in []float64, shared bool) {
	c := e.tensor.Channels
	if cap(e.x) < c {
		e.x = make([]float64, c)
		e.y = make([]float64, c)
	}
	x, y := e.x[:c], e.y[:c]

	for i := range dst.Frames {
		if shared {
			v := in[i]
			for ch := range x {
				x[ch] = v
			}
		} else {
			copy(x, in[i*c:(i+1)*c])
		}
		for s, st := range e.tensor.Stages {
			cols := e.cols[s]
			n := st.Order
			if n == 0 {
				vecmath.MulBlock(y, cols.b[0], x)
				x, y = y, x
				continue
			}
			vecmath.MulAddBlock(y, cols.b[0], x, e.state.vector(s, 0))
			for k := 0; k < n-1; k++ {
				zk := e.state.vector(s, k)
				vecmath.MulAddBlock(zk, cols.b[k+1], x, e.state.vector(s, k+1))
				vecmath.MulAddBlock(zk, cols.na[k+1], y, zk)
			}
			last := e.state.vector(s, n-1)
			vecmath.MulBlock(last, cols.b[n], x)
			vecmath.MulAddBlock(last, cols.na[n], y, last)
			x, y = y, x
		}
		copy(dst.Data[i*c:(i+1)*c], x)
	}
}
