// Package linear runs coefficient tensors against streaming signals.
//
// An [Engine] binds a validated [cascade.Tensor] to a [State] and filters
// frame-major blocks through every stage in cascade order using the direct
// form II transposed recursion
//
//	y      = b0*x + z0
//	z[i]   = b[i+1]*x + z[i+1] - a[i+1]*y
//	z[n-1] = b[n]*x - a[n]*y
//
// State persists between calls, so splitting a signal into blocks does not
// change the output. Two kernels are available: [Scalar] walks one channel
// at a time and can fan channels out over worker goroutines; [Vector]
// walks one frame at a time and updates whole channel vectors with
// algo-vecmath.
//
// A [Bank] wraps an Engine around an upstream stream.Source and is itself a
// stream.Source.
package linear
