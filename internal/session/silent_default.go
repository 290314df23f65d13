//go:build !((linux && cgo) || windows || darwin)

package session

import "net/http"

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires cgo for native sound libraries on this platform.
const AudioAvailable = false

// NewDefaultHandle returns the best handle for this build.
func NewDefaultHandle(_ *http.Client) Handle {
	return NewSilentHandle(0)
}
