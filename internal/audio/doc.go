// Package audio plays the overlay's UI sound effects (scroll, select, back
// and achievement) through beep, decoding WAV, OGG and MP3 files once and
// re-decoding them when they change on disk.
package audio
