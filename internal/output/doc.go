// Package output provides the native audio context of the player.
//
// Builds with cgo render through the system sound device via beep's
// speaker. Builds without cgo fall back to a null sink that consumes frames
// at real time, so playback timing, events and the analyser behave the same
// without producing sound.
package output
