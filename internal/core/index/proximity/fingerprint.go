package proximity

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the current topology: the member handles in insertion
// order and every edge as an ordered handle pair. Two graphs with the same
// members and edges have the same fingerprint.
func (g *Graph) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(g.order)))
	_, _ = d.Write(buf[:8])
	for _, n := range g.order {
		binary.LittleEndian.PutUint64(buf[:8], uint64(n.handle))
		_, _ = d.Write(buf[:8])
	}
	for _, a := range g.order {
		for _, b := range a.Neighbors() {
			if b.handle < a.handle {
				continue
			}
			binary.LittleEndian.PutUint64(buf[:8], uint64(a.handle))
			binary.LittleEndian.PutUint64(buf[8:], uint64(b.handle))
			_, _ = d.Write(buf[:])
		}
	}
	return d.Sum64()
}
