package becs

// Structured debug logging for entity and component lifecycle. Fields
// follow the entity_id / component_id / component_name convention so hosts
// can correlate manager activity with their own logs.

func (m *Manager) logEntity(msg string, id EntityID) {
	m.log.Debug().
		Str("entity_id", id.String()).
		Int("alive", m.live).
		Msg(msg)
}

func (m *Manager) logComponent(msg string, id EntityID, cid ComponentID) {
	m.log.Debug().
		Str("entity_id", id.String()).
		Int("component_id", int(cid)).
		Str("component_name", m.registry.name(cid)).
		Msg(msg)
}
