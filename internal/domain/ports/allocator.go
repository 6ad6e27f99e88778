package ports

import (
	"crypto/md5"
	"errors"
	"fmt"
	"math/big"
)

// ErrExhausted is returned when every port in the range is taken.
var ErrExhausted = errors.New("no free session port in range")

// Allocator maps names onto [Base, Base+Size).
type Allocator struct {
	base int
	size int
}

// New creates an allocator over [base, base+size).
func New(base, size int) (*Allocator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("port range size must be positive, got %d", size)
	}
	if base <= 0 || base+size > 65536 {
		return nil, fmt.Errorf("port range [%d, %d) is outside 1-65535", base, base+size)
	}
	return &Allocator{base: base, size: size}, nil
}

// Base returns the first port of the range.
func (a *Allocator) Base() int { return a.base }

// Size returns the number of ports in the range.
func (a *Allocator) Size() int { return a.size }

// Contains reports whether port lies in the range.
func (a *Allocator) Contains(port int) bool {
	return port >= a.base && port < a.base+a.size
}

// PortFor returns the deterministic home port of name.
func (a *Allocator) PortFor(name string) int {
	sum := md5.Sum([]byte(name))
	n := new(big.Int).SetBytes(sum[:])
	n.Mod(n, big.NewInt(int64(a.size)))
	return a.base + int(n.Int64())
}

// Assign picks the port for name, starting at its home port.
//
// claimed is the live port->name table (ports recorded on existing targets).
// bound reports whether some process currently listens on a port. A port is
// taken when another name claims it, or when it is bound and nobody claims
// it (a foreign listener). A port claimed by name itself is always returned.
func (a *Allocator) Assign(name string, claimed map[int]string, bound func(port int) bool) (int, error) {
	home := a.PortFor(name) - a.base

	for i := 0; i < a.size; i++ {
		port := a.base + (home+i)%a.size
		owner, ok := claimed[port]
		if ok {
			if owner == name {
				return port, nil
			}
			continue
		}
		if bound != nil && bound(port) {
			continue
		}
		return port, nil
	}

	return 0, fmt.Errorf("%w: %d ports from %d", ErrExhausted, a.size, a.base)
}
