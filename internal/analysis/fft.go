package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is a radix-2 transform. The input length must be a power of two;
// use PadPow2 first otherwise.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		out := make([]complex128, n)
		for i, v := range data {
			out[i] = complex(v, 0)
		}
		return out
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	fe, fo := FFT(even), FFT(odd)
	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = fe[k] + w*fo[k]
		out[k+n/2] = fe[k] - w*fo[k]
	}
	return out
}

// PadPow2 zero pads data to the next power of two after removing its
// mean, so the DC bin does not swamp the spectrum.
func PadPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	if len(data) > 0 {
		mean /= float64(len(data))
	}

	out := make([]float64, n)
	for i, v := range data {
		out[i] = v - mean
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the spectrum of
// the padded series.
func PowerSpectrum(data []float64) []float64 {
	f := FFT(PadPow2(data))
	ps := make([]float64, len(f)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin for a series sampled every dt seconds, or 0 for a flat series.
func DominantFrequency(data []float64, dt float64) float64 {
	ps := PowerSpectrum(data)
	best, idx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > best {
			best, idx = ps[i], i
		}
	}
	if idx == 0 || dt <= 0 {
		return 0
	}
	n := 2 * len(ps)
	return float64(idx) / (float64(n) * dt)
}
