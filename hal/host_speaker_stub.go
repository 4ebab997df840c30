//go:build !tinygo && !cgo

package hal

// silentSpeaker is used when CGO audio backends are unavailable.
type silentSpeaker struct{}

func newHostSpeaker() Speaker { return silentSpeaker{} }

func (silentSpeaker) Tone(int) error { return nil }
func (silentSpeaker) Stop() error    { return nil }
