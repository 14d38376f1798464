package bess

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/voltsim/besstwin/core/testcycle"
)

// Layout describes the site wiring. When GroupContainerCounts is non-empty
// it defines the container count per group in order; otherwise the uniform
// NumGroups by ContainersPerGroup shape applies.
type Layout struct {
	GroupContainerCounts []int
	NumGroups            int
	ContainersPerGroup   int
}

// DefaultLayout returns the two-by-two commissioning layout.
func DefaultLayout() Layout {
	return Layout{NumGroups: 2, ContainersPerGroup: 2}
}

// Site is the root of the simulated plant: inverter groups plus the active
// test plan producing the per-step site power target. The tree is built
// once, mutated in place each step and discarded at run end.
type Site struct {
	RunID  string
	Groups []*InverterGroup

	CurrentTimeS  float64
	TestState     string
	StateTimeS    float64
	TargetPowerMW float64

	plan testcycle.Plan
}

// NewSite builds the full object tree from the layout and initial SOC
// distribution. The seed is consumed once here; stepping is deterministic
// afterwards. plan selects the built-in cycle or a supplied sequence and is
// fixed for the site's lifetime.
func NewSite(p *Params, layout Layout, dist SOCDistribution, seed int64, plan testcycle.Plan) *Site {
	rng := rand.New(rand.NewSource(seed))

	counts := layout.GroupContainerCounts
	if len(counts) == 0 {
		numGroups := layout.NumGroups
		if numGroups < 1 {
			numGroups = 1
		}
		perGroup := layout.ContainersPerGroup
		if perGroup < 0 {
			perGroup = 0
		}
		counts = make([]int, numGroups)
		for i := range counts {
			counts[i] = perGroup
		}
	}

	groups := make([]*InverterGroup, 0, len(counts))
	for gi, count := range counts {
		containers := make([]*Container, 0, count)
		for ci := 0; ci < count; ci++ {
			id := fmt.Sprintf("G%dC%d", gi+1, ci+1)
			containers = append(containers, buildContainer(id, p, dist, rng))
		}
		groups = append(groups, newInverterGroup(fmt.Sprintf("G%d", gi+1), p, containers))
	}

	return &Site{
		RunID:     uuid.NewString(),
		Groups:    groups,
		TestState: plan.State(),
		plan:      plan,
	}
}

func buildContainer(id string, p *Params, dist SOCDistribution, rng *rand.Rand) *Container {
	racks := make([]*Rack, p.RacksPerContainer)
	for ri := range racks {
		packs := make([]*Pack, p.PacksPerRack)
		for pi := range packs {
			packs[pi] = newPack(p, dist.Sample(p.CellsPerPack, rng), p.InitialCellTempC)
		}
		racks[ri] = newRack(packs)
	}
	return newContainer(id, p, racks)
}

// RunTimeStep advances the site by dtSeconds: the active plan produces the
// new target, the target splits equally across groups and every group
// updates in order before site time advances.
func (s *Site) RunTimeStep(dtSeconds float64) {
	st := s.plan.Advance(dtSeconds, s)
	s.TestState = st.State
	s.StateTimeS = st.StateTimeS
	s.TargetPowerMW = st.TargetPowerMW

	if len(s.Groups) == 0 {
		s.CurrentTimeS += dtSeconds
		return
	}
	perGroupMW := s.TargetPowerMW / float64(len(s.Groups))
	for _, g := range s.Groups {
		g.Update(perGroupMW, dtSeconds)
	}
	s.CurrentTimeS += dtSeconds
}

// TargetPower returns the current site power target in MW.
func (s *Site) TargetPower() float64 { return s.TargetPowerMW }

// AnyContainerSOCAtOrAbove reports whether any container's SOC rollup has
// reached the threshold. Implements testcycle.ContainerProbe.
func (s *Site) AnyContainerSOCAtOrAbove(percent float64) bool {
	for _, g := range s.Groups {
		for _, c := range g.Containers {
			if c.SOC() >= percent {
				return true
			}
		}
	}
	return false
}

// AnyContainerSOCAtOrBelow reports whether any container's SOC rollup has
// fallen to the threshold. Implements testcycle.ContainerProbe.
func (s *Site) AnyContainerSOCAtOrBelow(percent float64) bool {
	for _, g := range s.Groups {
		for _, c := range g.Containers {
			if c.SOC() <= percent {
				return true
			}
		}
	}
	return false
}
