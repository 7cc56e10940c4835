package becs

import (
	"io"

	"github.com/goccy/go-json"
)

// entityDump is the JSON shape of one live entity in a debug dump.
type entityDump struct {
	ID         uint64   `json:"id"`
	Index      uint32   `json:"index"`
	Version    uint32   `json:"version"`
	Components []string `json:"components"`
}

// DebugDump writes every live entity as JSON: the packed handle, its index
// and version, and the names of its component types in registration order.
// Component data itself is not serialized; the dump is a diagnostic
// snapshot, not a persistence format.
func (m *Manager) DebugDump(w io.Writer) error {
	dump := make([]entityDump, 0, m.live)
	for index := range m.alive {
		if !m.alive[index] {
			continue
		}
		id := EntityID{Index: uint32(index), Version: m.versions[index]}
		names := make([]string, 0, m.masks[index].Count())
		for i := 0; i < m.registry.count(); i++ {
			cid := ComponentID(i)
			if m.masks[index].Has(cid) {
				names = append(names, m.registry.name(cid))
			}
		}
		dump = append(dump, entityDump{
			ID:         id.Raw(),
			Index:      id.Index,
			Version:    id.Version,
			Components: names,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}
