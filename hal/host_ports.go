//go:build !tinygo

package hal

import "sync"

// hostPorts latches the last byte written to each port.
type hostPorts struct {
	mu   sync.Mutex
	regs map[uint16]uint8
}

func newHostPorts() *hostPorts {
	return &hostPorts{regs: make(map[uint16]uint8)}
}

func (p *hostPorts) In(port uint16) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regs[port]
}

func (p *hostPorts) Out(port uint16, v uint8) {
	p.mu.Lock()
	p.regs[port] = v
	p.mu.Unlock()
}
