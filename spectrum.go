package rgbfx

// This file contains the spectral analysis behind the loopback audio
// effect.  A captured frame is Hann windowed, transformed with an FFT
// plan, and reduced to per band energies which in turn weight the
// band colors into one composite color.

import (
	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/window"
)

// Band is a contiguous frequency range with the color it contributes
// to the composite.
type Band struct {
	Low   float64
	High  float64
	Color Color
}

// bandColors is the progression assigned to bands from bass upwards.
var bandColors = []Color{Red, Orange, Yellow, Green, Blue, Violet}

// BandsFromEdges turns ascending band edge frequencies into bands, the
// last band running from the final edge up to the Nyquist frequency.
// Colors are assigned from the bass-to-treble progression, wrapping if
// more bands are configured than colors exist.
func BandsFromEdges(edges []int, sampleRate float64) (bands []Band, err errors.Error) {
	if len(edges) < 2 {
		return nil, errors.New("invalid integer list").With("reason", "at least two band edges required").With("stack", stack.Trace().TrimRuntime())
	}
	nyquist := sampleRate / 2

	for i := 0; i < len(edges); i++ {
		low := float64(edges[i])
		high := nyquist
		if i+1 < len(edges) {
			high = float64(edges[i+1])
		}
		if high <= low {
			return nil, errors.New("invalid integer list").With("reason", "band edges must ascend").With("edge", edges[i]).With("stack", stack.Trace().TrimRuntime())
		}
		bands = append(bands, Band{Low: low, High: high, Color: bandColors[i%len(bandColors)]})
	}
	return bands, nil
}

// Analyzer holds the reusable FFT state for one frame size.
type Analyzer struct {
	sampleRate float64
	size       int
	plan       *algofft.Plan[complex128]
	coeffs     []float64
	in         []complex128
	out        []complex128
	mags       []float64
}

func NewAnalyzer(size int, sampleRate float64) (analyzer *Analyzer, err errors.Error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, errors.New("analysis size must be a power of two").With("size", size).With("stack", stack.Trace().TrimRuntime())
	}
	plan, errGo := algofft.NewPlan64(size)
	if errGo != nil {
		return nil, errors.Wrap(errGo, "fft plan failed").With("size", size).With("stack", stack.Trace().TrimRuntime())
	}
	return &Analyzer{
		sampleRate: sampleRate,
		size:       size,
		plan:       plan,
		coeffs:     window.Generate(window.TypeHann, size),
		in:         make([]complex128, size),
		out:        make([]complex128, size),
		mags:       make([]float64, size/2+1),
	}, nil
}

// Magnitudes computes the one sided magnitude spectrum of frame.  A
// frame shorter than the analysis size is zero padded, a longer one is
// truncated.  The returned slice is reused between calls.
func (analyzer *Analyzer) Magnitudes(frame []float64) (mags []float64, err errors.Error) {
	for i := range analyzer.in {
		sample := 0.0
		if i < len(frame) {
			sample = frame[i] * analyzer.coeffs[i]
		}
		analyzer.in[i] = complex(sample, 0)
	}

	if errGo := analyzer.plan.Forward(analyzer.out, analyzer.in); errGo != nil {
		return nil, errors.Wrap(errGo, "fft failed").With("stack", stack.Trace().TrimRuntime())
	}

	for i := range analyzer.mags {
		re := real(analyzer.out[i])
		im := imag(analyzer.out[i])
		analyzer.mags[i] = re*re + im*im
	}
	return analyzer.mags, nil
}

// BandEnergies sums the magnitude spectrum over each band, normalized
// by the number of bins the band spans so wide bands do not dominate
// on width alone.
func (analyzer *Analyzer) BandEnergies(mags []float64, bands []Band) (energies []float64) {
	binHz := analyzer.sampleRate / float64(analyzer.size)
	energies = make([]float64, len(bands))

	for i, band := range bands {
		lowBin := int(band.Low / binHz)
		highBin := int(band.High / binHz)
		if lowBin < 1 {
			lowBin = 1 // skip DC
		}
		if highBin > len(mags)-1 {
			highBin = len(mags) - 1
		}
		if highBin < lowBin {
			continue
		}
		sum := 0.0
		for bin := lowBin; bin <= highBin; bin++ {
			sum += mags[bin]
		}
		energies[i] = sum / float64(highBin-lowBin+1)
	}
	return energies
}

// energyFloor is the fraction of the strongest band below which a band
// is treated as carrying no usable energy.
const energyFloor = 1e-3

// CompositeColor blends each band's color by its share of the total
// energy.  When the frame carries no energy at all the previous
// composite is held, reported through the ok result, so silence never
// divides by zero or produces an undefined blend.
func CompositeColor(bands []Band, energies []float64, previous Color) (composite Color, ok bool) {
	peak := 0.0
	for _, e := range energies {
		if e > peak {
			peak = e
		}
	}
	if peak <= 0 {
		return previous, false
	}

	total := 0.0
	for i, e := range energies {
		if e < peak*energyFloor {
			continue
		}
		if total == 0 {
			composite = bands[i].Color
		} else {
			// Incremental weighted average keeps weights renormalized
			// across the bands blended so far.
			composite = LerpColor(composite, bands[i].Color, e/(total+e))
		}
		total += e
	}
	if total <= 0 {
		return previous, false
	}
	return composite, true
}
