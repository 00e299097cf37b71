// Package wake implements the wake-source aggregation abstraction (spec.md
// SUPPLEMENTED FEATURES, recovered from irq.c): each registered wake
// source can independently assert that it requires a particular regulator
// rail (AVCC, VDD_SYS) to remain enabled during suspend, and the aggregate
// across all sources feeds the system state machine's choice of suspend
// depth (whether that rail may be dropped). This generalizes the original's per-platform weak
// irq_needs_avcc/irq_needs_vdd_sys overrides into an explicit registry.
package wake

// Source is one interrupt source that can wake the system from suspend.
type Source interface {
	// NeedsAVCC reports whether this source requires the AVCC rail to stay
	// powered while the system is suspended.
	NeedsAVCC() bool
	// NeedsVDDSys reports whether this source requires the VDD_SYS rail to
	// stay powered while the system is suspended.
	NeedsVDDSys() bool
	// Poll returns the bitmask of pending wake events for this source, and
	// clears them.
	Poll() uint32
}

// Registry aggregates wake sources registered by the board configuration.
type Registry struct {
	sources []Source
}

// NewRegistry creates an empty wake source registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds a wake source to the registry.
func (r *Registry) Register(s Source) { r.sources = append(r.sources, s) }

// NeedsAVCC reports whether any registered source requires AVCC.
func (r *Registry) NeedsAVCC() bool {
	for _, s := range r.sources {
		if s.NeedsAVCC() {
			return true
		}
	}
	return false
}

// NeedsVDDSys reports whether any registered source requires VDD_SYS.
func (r *Registry) NeedsVDDSys() bool {
	for _, s := range r.sources {
		if s.NeedsVDDSys() {
			return true
		}
	}
	return false
}

// Poll aggregates pending wake events across all registered sources.
func (r *Registry) Poll() uint32 {
	var events uint32
	for _, s := range r.sources {
		events |= s.Poll()
	}
	return events
}
