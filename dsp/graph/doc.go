// Package graph provides a small stereo audio-processing graph for live
// playback.
//
// A Graph holds an explicit adjacency description: a node list plus typed
// connections. Compile orders the nodes topologically (Kahn's algorithm) and
// Render pulls audio through them in fixed render quanta of [Quantum] frames.
//
// Included nodes:
//   - MediaSource: pulls interleaved frames from a beep-compatible Source.
//   - Gain: linear gain stage.
//   - Biquad: RBJ cookbook lowpass, highpass, bandpass, notch and peaking
//     sections whose coefficients follow their parameters without resetting
//     the filter state.
//   - Compressor: stereo-linked soft-knee compressor.
//   - Delay: per-channel delay line. The only node allowed to close a cycle.
//   - Convolver: uniformly partitioned FFT convolution with a stereo
//     impulse response.
//   - StereoPanner: equal-power stereo panner.
//   - Analyser: pass-through node that exposes windowed FFT magnitudes and
//     the time-domain waveform as bytes for visualisation.
//
// Parameter writes happen through [Graph.Update], which serialises them with the
// renderer so that every write lands on a quantum boundary.
package graph
