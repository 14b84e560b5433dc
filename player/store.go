package player

import "slices"

// SetEqBandGain sets the gain of band index in dB, clamped to
// [MinEQGain, MaxEQGain]. An index outside the band range is ignored.
func (p *Player) SetEqBandGain(index int, gain float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.bands) {
		return
	}
	gain = clampFloat(gain, MinEQGain, MaxEQGain)

	h := p.handle
	if h == nil {
		p.bands[index].Gain = gain
		return
	}
	h.Graph.Update(func() {
		eq := h.EQ[index]
		eq.Gain().Set(gain)
		p.bands[index].Gain = eq.Gain().Value()
	})
}

// UpdateEffects applies the non-nil fields of patch to the effect state and,
// once the graph exists, to the live nodes in the same step. Reverb updates
// the wet and dry gains together.
func (p *Player) UpdateEffects(patch EffectsPatch) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := patch.apply(p.effects)

	h := p.handle
	if h == nil {
		p.effects = next
		return
	}
	h.Graph.Update(func() {
		h.writeEffects(patch, next)
		p.effects = h.readEffects(next)
	})
}

// Effects returns the current effect state.
func (p *Player) Effects() AudioEffects {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.effects
}

// EQBands returns a copy of the equaliser bands.
func (p *Player) EQBands() []EQBand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.bands)
}
