package iir

import "math"

const machEps = 1.11022302462515654042e-16

// ellipk returns the complete elliptic integral of the first kind K(m) for
// parameter m = k^2, computed with the arithmetic-geometric mean.
func ellipk(m float64) float64 {
	if m >= 1 {
		return math.Inf(1)
	}
	return math.Pi / (2 * agm(1, math.Sqrt(1-m)))
}

// ellipkm1 returns K(1-p) without forming 1-p, so it stays accurate for
// small p.
func ellipkm1(p float64) float64 {
	if p <= 0 {
		return math.Inf(1)
	}
	return math.Pi / (2 * agm(1, math.Sqrt(p)))
}

func agm(a, b float64) float64 {
	for range 64 {
		if math.Abs(a-b) <= machEps*a {
			break
		}
		a, b = (a+b)/2, math.Sqrt(a*b)
	}
	return a
}

// ellipj returns the Jacobi elliptic functions sn, cn, dn of u for
// parameter m, using the descending Landen (AGM) recurrence.
func ellipj(u, m float64) (sn, cn, dn float64) {
	switch {
	case m < 0 || m > 1 || math.IsNaN(m):
		return math.NaN(), math.NaN(), math.NaN()
	case m < 1e-9:
		t, b := math.Sin(u), math.Cos(u)
		ai := 0.25 * m * (u - t*b)
		return t - ai*b, b + ai*t, 1 - 0.5*m*t*t
	case m >= 0.9999999999:
		ai := 0.25 * (1 - m)
		b := math.Cosh(u)
		t := math.Tanh(u)
		phi := 1 / b
		twon := b * math.Sinh(u)
		sn = t + ai*(twon-u)/(b*b)
		ai *= t * phi
		return sn, phi - ai*(twon-u), phi + ai*(twon+u)
	}

	var a, c [9]float64
	a[0] = 1
	b := math.Sqrt(1 - m)
	c[0] = math.Sqrt(m)
	twon := 1.0
	i := 0
	for math.Abs(c[i]/a[i]) > machEps {
		if i > 7 {
			break
		}
		ai := a[i]
		i++
		c[i] = (ai - b) / 2
		t := math.Sqrt(ai * b)
		a[i] = (ai + b) / 2
		b = t
		twon *= 2
	}

	phi := twon * a[i] * u
	var prev float64
	for ; i > 0; i-- {
		t := c[i] * math.Sin(phi) / a[i]
		prev = phi
		phi = (math.Asin(t) + phi) / 2
	}
	sn = math.Sin(phi)
	cn = math.Cos(phi)
	dn = cn / math.Cos(phi-prev)
	return sn, cn, dn
}

// carlsonRF is Carlson's symmetric elliptic integral of the first kind.
func carlsonRF(x, y, z float64) float64 {
	const tol = 1e-10
	for range 200 {
		sx, sy, sz := math.Sqrt(x), math.Sqrt(y), math.Sqrt(z)
		lambda := sx*sy + sy*sz + sz*sx
		x = (x + lambda) / 4
		y = (y + lambda) / 4
		z = (z + lambda) / 4
		mu := (x + y + z) / 3
		dx, dy, dz := 1-x/mu, 1-y/mu, 1-z/mu
		if math.Max(math.Abs(dx), math.Max(math.Abs(dy), math.Abs(dz))) < tol {
			e2 := dx*dy - dz*dz
			e3 := dx * dy * dz
			return (1 + (e2/24-0.1-3*e3/44)*e2 + e3/14) / math.Sqrt(mu)
		}
	}
	return 1 / math.Sqrt((x+y+z)/3)
}

// ellipf returns the incomplete elliptic integral F(phi | m) for
// 0 <= phi <= pi/2.
func ellipf(phi, m float64) float64 {
	s, c := math.Sincos(phi)
	return s * carlsonRF(c*c, 1-m*s*s, 1)
}

// arcJacSC1 returns the real v with sn(jv | m) = jw. By Jacobi's imaginary
// transformation sn(jv | m) = j sc(v | 1-m), so v = F(atan(w) | 1-m).
func arcJacSC1(w, m float64) float64 {
	return ellipf(math.Atan(w), 1-m)
}

// ellipdeg solves the degree equation for an order-n elliptic filter with
// selectivity parameter m1 using the nome series.
func ellipdeg(n int, m1 float64) float64 {
	const terms = 7
	k1 := ellipk(m1)
	k1p := ellipkm1(m1)
	q1 := math.Exp(-math.Pi * k1p / k1)
	q := math.Pow(q1, 1/float64(n))

	num := 0.0
	for i := 0; i <= terms; i++ {
		num += math.Pow(q, float64(i*(i+1)))
	}
	den := 1.0
	for i := 1; i <= terms; i++ {
		den += 2 * math.Pow(q, float64(i*i))
	}
	r := num / den
	return 16 * q * r * r * r * r
}

// pow10m1 returns 10^x - 1.
func pow10m1(x float64) float64 {
	return math.Expm1(math.Ln10 * x)
}
