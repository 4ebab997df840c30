//go:build !tinygo

package hal

const (
	hostWidth  = 320
	hostHeight = 240
)

type hostHAL struct {
	fb    *hostFramebuffer
	t     *hostTime
	spk   Speaker
	ports *hostPorts
}

// New returns a host HAL whose clock runs at hz ticks per second.
func New(hz int) HAL {
	return newHost(hz)
}

func newHost(hz int) *hostHAL {
	return &hostHAL{
		fb:    newHostFramebuffer(hostWidth, hostHeight),
		t:     newHostTime(hz),
		spk:   newHostSpeaker(),
		ports: newHostPorts(),
	}
}

func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Speaker() Speaker { return h.spk }
func (h *hostHAL) Ports() Ports     { return h.ports }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }
