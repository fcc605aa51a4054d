package rank

import "github.com/veridex/tagrank/core"

// RankMonitor provides hooks to observe the ranking process.
// Implement this interface to track intermediate steps during ranking.
type RankMonitor interface {
	Start(query *core.Record)
	AfterCollect(parents []core.ID)
	AfterRerank(matches []core.Match)
	ResolutionFailed(id core.ID, err error)
	Finish(matches []core.Match)
}

// noopMonitor is a no-op implementation of RankMonitor
type noopMonitor struct{}

var _ RankMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Record)              {}
func (n *noopMonitor) AfterCollect(_ []core.ID)          {}
func (n *noopMonitor) AfterRerank(_ []core.Match)        {}
func (n *noopMonitor) ResolutionFailed(_ core.ID, _ error) {}
func (n *noopMonitor) Finish(_ []core.Match)             {}
