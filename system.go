package becs

// System is external simulation logic driven once per tick. Systems consume
// the manager through views and generic component access; they are
// consumers of the core, not part of it.
type System interface {
	// Configure is called once when the system is registered, before the
	// first Update. Build views and subscribe to events here.
	Configure(m *Manager)

	// Update advances the system by dt seconds.
	Update(m *Manager, dt float64)
}

// Stage represents a scheduling stage for system execution.
// Systems are executed in stage order: Before, then Default, then After.
type Stage int

const (
	// Before stage runs first. Use for input handling and setup logic
	// other systems depend on.
	Before Stage = iota

	// Default stage runs second. Use for main simulation logic.
	Default

	// After stage runs last. Use for cleanup and bookkeeping that must
	// observe the tick's final state.
	After

	// stageCount is the total number of stages.
	stageCount
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case Before:
		return "Before"
	case Default:
		return "Default"
	case After:
		return "After"
	default:
		return "Unknown"
	}
}

// Systems is the registry of systems attached to one manager. Within a
// stage, systems run in registration order; the order is fixed at
// registration and stable across ticks.
type Systems struct {
	manager *Manager
	stages  [stageCount][]System
	count   int
}

func newSystems(m *Manager) *Systems {
	return &Systems{manager: m}
}

// Add registers a system in the given stage and calls its Configure hook.
// A stage outside the declared set falls back to Default.
func (s *Systems) Add(system System, stage Stage) {
	if stage < Before || stage >= stageCount {
		stage = Default
	}
	system.Configure(s.manager)
	s.stages[stage] = append(s.stages[stage], system)
	s.count++
}

// Len returns the number of registered systems.
func (s *Systems) Len() int {
	return s.count
}

// UpdateAll advances every system by dt seconds, stage by stage.
func (s *Systems) UpdateAll(dt float64) {
	for stage := Stage(0); stage < stageCount; stage++ {
		for _, system := range s.stages[stage] {
			system.Update(s.manager, dt)
		}
	}
}
