package graph

import "math"

const log2Of10Div20 = 0.166096404744

// Compressor is a stereo-linked downward compressor with a soft knee.
//
// The detector follows the peak of max(|L|, |R|) with separate attack and
// release time constants (seconds). Gain is computed in the log2 domain with
// a quadratic knee. A fixed makeup gain of 60% of the reduction applied to a
// full-scale signal is added after the gain computer.
type Compressor struct {
	base
	sampleRate float64

	threshold *Param
	knee      *Param
	ratio     *Param
	attack    *Param
	release   *Param

	version      uint64
	thresholdLog float64
	kneeLog      float64
	invKneeLog   float64
	slope        float64
	attackCoeff  float64
	releaseCoeff float64
	makeup       float64

	peak      float64
	reduction float64
}

// NewCompressor creates a compressor with the given threshold (dB), ratio,
// attack and release (seconds). The knee starts at 30 dB.
func NewCompressor(id string, sampleRate, threshold, ratio, attack, release float64) *Compressor {
	c := &Compressor{
		base:       base{id: id},
		sampleRate: sampleRate,
		threshold:  newParam("threshold", -24, -100, 0),
		knee:       newParam("knee", 30, 0, 40),
		ratio:      newParam("ratio", 12, 1, 20),
		attack:     newParam("attack", 0.003, 0, 1),
		release:    newParam("release", 0.25, 0, 1),
	}
	c.threshold.Set(threshold)
	c.ratio.Set(ratio)
	c.attack.Set(attack)
	c.release.Set(release)
	c.updateCoefficients()
	return c
}

// Kind reports KindCompressor.
func (c *Compressor) Kind() Kind { return KindCompressor }

// Threshold is the level in dB above which gain reduction starts.
func (c *Compressor) Threshold() *Param { return c.threshold }

// Knee is the width in dB of the soft transition around the threshold.
func (c *Compressor) Knee() *Param { return c.knee }

// Ratio is the input/output slope above the knee.
func (c *Compressor) Ratio() *Param { return c.ratio }

// Attack is the time in seconds to reduce gain by 10 dB.
func (c *Compressor) Attack() *Param { return c.attack }

// Release is the time in seconds to recover 10 dB of gain.
func (c *Compressor) Release() *Param { return c.release }

// Params returns threshold, knee, ratio, attack and release in that order.
func (c *Compressor) Params() []*Param {
	return []*Param{c.threshold, c.knee, c.ratio, c.attack, c.release}
}

// Reduction returns the gain reduction applied to the last sample in dB
// (zero or negative).
func (c *Compressor) Reduction() float64 {
	return c.reduction
}

// Process applies the gain computed from the stereo peak to both channels.
func (c *Compressor) Process(in, out Bus) {
	if c.paramVersion() != c.version {
		c.updateCoefficients()
	}

	left, right := in[0], in[1]
	outL, outR := out[0], out[1]
	gain := 1.0
	for i := range left {
		level := math.Max(math.Abs(left[i]), math.Abs(right[i]))
		if level > c.peak {
			c.peak += (level - c.peak) * c.attackCoeff
		} else {
			c.peak = level + (c.peak-level)*c.releaseCoeff
		}

		gain = c.gain(c.peak)
		g := gain * c.makeup
		outL[i] = left[i] * g
		outR[i] = right[i] * g
	}
	c.peak = flushDenormal(c.peak)
	c.reduction = 20 * math.Log10(gain)
}

// Reset clears the detector.
func (c *Compressor) Reset() {
	c.peak = 0
	c.reduction = 0
}

func (c *Compressor) paramVersion() uint64 {
	return c.threshold.version + c.knee.version + c.ratio.version +
		c.attack.version + c.release.version
}

func (c *Compressor) updateCoefficients() {
	c.thresholdLog = c.threshold.Value() * log2Of10Div20
	c.kneeLog = c.knee.Value() * log2Of10Div20
	if c.kneeLog > 0 {
		c.invKneeLog = 1 / c.kneeLog
	} else {
		c.invKneeLog = 0
	}
	c.slope = 1 - 1/c.ratio.Value()

	c.attackCoeff = 1
	if a := c.attack.Value(); a > 0 {
		c.attackCoeff = 1 - math.Exp(-math.Ln2/(a*c.sampleRate))
	}
	c.releaseCoeff = 0
	if r := c.release.Value(); r > 0 {
		c.releaseCoeff = math.Exp(-math.Ln2 / (r * c.sampleRate))
	}

	fullScale := c.gain(1)
	c.makeup = math.Pow(fullScale, -0.6)

	c.version = c.paramVersion()
}

func (c *Compressor) gain(level float64) float64 {
	if level <= 0 {
		return 1
	}

	overshoot := math.Log2(level) - c.thresholdLog
	if c.kneeLog <= 0 {
		if overshoot <= 0 {
			return 1
		}
		return math.Exp2(-overshoot * c.slope)
	}

	half := c.kneeLog * 0.5
	var effective float64
	switch {
	case overshoot < -half:
		return 1
	case overshoot > half:
		effective = overshoot
	default:
		scratch := overshoot + half
		effective = scratch * scratch * 0.5 * c.invKneeLog
	}
	return math.Exp2(-effective * c.slope)
}
