// Package css implements the compute subsystem (CSS) power coordinator
// (spec.md §3/§4.7): a strict partial order over core, cluster, and CSS
// power states (deeper states have larger values), maintained by two
// restrictions that make a non-atomic, single-threaded implementation
// correct:
//
//  1. A request to suspend a core is only ever sent by that core, so at
//     the time it is received, the core and all of its ancestor domains
//     are known to be on.
//  2. Turning a core on must also turn on every ancestor domain, and a
//     parent domain is never allowed to be deeper than the shallowest (most
//     "on") state of any of its children.
//
// This lets SetPowerState recompute each ancestor's state bottom-up from
// its children on every suspend request, and lets Resume walk top-down
// from CSS to cluster to core on the way back up. Grounded on
// drivers/css/css.c, css.h, and css_power_state.c from the original.
package css

import "github.com/socfw/scp/internal/errcode"

// PowerState is a coordinated power state for a core, cluster, or the CSS
// as a whole. Values increase with depth: On is shallowest (fully
// powered), Off is deepest.
type PowerState uint8

const (
	On PowerState = iota
	Retention
	Off
)

// Hardware is implemented by the board's CSS driver: the actual register
// twiddling (power switches, core reset lines, cluster L2 flush, CPU
// warm-boot entry point) that must run alongside each state transition.
// Suspend hooks assume the domain's previous state was On; resume hooks
// restore it from old_state.
type Hardware interface {
	SuspendCore(cluster, core uint32, newState PowerState)
	ResumeCore(cluster, core uint32, oldState PowerState)
	SuspendCluster(cluster uint32, newState PowerState)
	ResumeCluster(cluster uint32, oldState PowerState)
	SuspendCSS(newState PowerState)
	ResumeCSS(oldState PowerState)
}

// SystemSuspend is called when the CSS as a whole transitions to Off,
// letting the system state machine (package system) drive the rest of the
// suspend sequence (DRAM self-refresh, PMIC suspend, and so on).
type SystemSuspend func()

// Coordinator owns the power-state vector for every core and cluster and
// the CSS as a whole, plus the hardware hooks and core-count layout for
// this board.
type Coordinator struct {
	hw      Hardware
	suspend SystemSuspend

	coreCount []uint32 // coreCount[cluster] = number of cores present

	core    [][]PowerState // core[cluster][core]
	cluster []PowerState

	css PowerState

	leadCluster, leadCore uint32
}

// New creates a coordinator for a board with the given per-cluster core
// counts. Only cluster 0 and its core 0 start On; every other core and
// cluster starts Off, matching the original's static initializer (only the
// boot core and its ancestor domains begin powered — every other domain is
// presumed off until its core requests otherwise).
func New(hw Hardware, suspend SystemSuspend, coreCount []uint32) *Coordinator {
	c := &Coordinator{
		hw:        hw,
		suspend:   suspend,
		coreCount: append([]uint32(nil), coreCount...),
		cluster:   make([]PowerState, len(coreCount)),
		core:      make([][]PowerState, len(coreCount)),
	}
	for i, n := range coreCount {
		c.core[i] = make([]PowerState, n)
		for j := range c.core[i] {
			c.core[i][j] = Off
		}
		c.cluster[i] = Off
	}
	if len(coreCount) > 0 {
		c.cluster[0] = On
		if len(c.core[0]) > 0 {
			c.core[0][0] = On
		}
	}
	c.css = On
	return c
}

// ClusterCount returns the number of clusters present on this board.
func (c *Coordinator) ClusterCount() uint32 { return uint32(len(c.coreCount)) }

// CoreCount returns the number of cores present in cluster.
func (c *Coordinator) CoreCount(cluster uint32) uint32 {
	if cluster >= c.ClusterCount() {
		return 0
	}
	return c.coreCount[cluster]
}

// GetPowerState reports the cluster's coordinated state and a bitmask of
// its cores that are not fully Off.
func (c *Coordinator) GetPowerState(cluster uint32) (clusterState PowerState, onlineCores uint32, err error) {
	if cluster >= c.ClusterCount() {
		return 0, 0, errcode.EInval
	}
	var mask uint32
	for core, st := range c.core[cluster] {
		if st != Off {
			mask |= 1 << uint(core)
		}
	}
	return c.cluster[cluster], mask, nil
}

// SetPowerState requests a new state for one core, propagating upward to
// its cluster and the CSS as required by the partial-order invariant.
//
// Requesting anything other than On suspends the core (and, transitively,
// any ancestor domain that no longer has an On descendant); requesting On
// resumes the CSS, then the cluster, then the core — top-down, the reverse
// of suspend's bottom-up order.
func (c *Coordinator) SetPowerState(cluster, core uint32, coreState, clusterState, cssState PowerState) error {
	if cluster >= c.ClusterCount() {
		return errcode.EInval
	}
	if core >= c.CoreCount(cluster) {
		return errcode.EInval
	}

	if coreState != On {
		c.hw.SuspendCore(cluster, core, coreState)
		c.core[cluster][core] = coreState

		// A cluster must stay on if any of its cores is on.
		for _, st := range c.core[cluster] {
			if st < clusterState {
				clusterState = st
			}
		}
		c.hw.SuspendCluster(cluster, clusterState)
		c.cluster[cluster] = clusterState

		// The CSS must stay on if any of its clusters is on.
		for _, st := range c.cluster {
			if st < cssState {
				cssState = st
			}
		}
		c.hw.SuspendCSS(cssState)
		c.css = cssState

		if cssState == Off {
			if c.suspend != nil {
				c.suspend()
			}
			c.leadCluster, c.leadCore = cluster, core
		}
	} else {
		if c.css != On {
			c.hw.ResumeCSS(c.css)
			c.css = On
		}

		if c.cluster[cluster] != On {
			c.hw.ResumeCluster(cluster, c.cluster[cluster])
			c.cluster[cluster] = On
		}

		if c.core[cluster][core] != On {
			c.hw.ResumeCore(cluster, core, c.core[cluster][core])
			c.core[cluster][core] = On
		}
	}

	return nil
}

// Resume brings the system back from a CSS-wide suspend, re-entering on
// the core that most recently drove the CSS to Off.
func (c *Coordinator) Resume() error {
	return c.SetPowerState(c.leadCluster, c.leadCore, On, On, On)
}
