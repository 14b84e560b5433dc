// Package player is the playback engine of algo-player.
//
// A Player owns one media element, one lazily built signal graph and the
// queue. Its entry points mirror a media player UI: PlayTrack, TogglePlay,
// Seek, SetVolume, ToggleMute, PlayNext, PlayPrevious, ToggleShuffle,
// CycleRepeat, SetEqBandGain, UpdateEffects and the queue mutators. Errors
// from the host (a missing source URL, a rejected start, a suspended audio
// context that cannot be resumed) are logged and absorbed; callers observe
// the outcome through Snapshot.
//
// The graph is built on the first play:
//
//	source -> eq(32 Hz .. 16 kHz) -> compressor -> filter -+-> delay -> feedback -+-> panner
//	                                      ^                |                      |
//	                                      +----------------|----------------------+
//	                                                       +-> dry --------------> panner
//	                                                       +-> convolver -> wet -> panner
//	panner -> master -> analyser -> destination
package player
