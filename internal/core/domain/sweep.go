package domain

// SweepOutcome describes why a sweep ended.
type SweepOutcome string

// Available sweep outcomes.
const (
	// SweepCompleted means every unprocessed unit was attempted.
	SweepCompleted SweepOutcome = "completed"

	// SweepStoppedByLimit means the budget limit was reached before the end.
	SweepStoppedByLimit SweepOutcome = "stopped_by_limit"

	// SweepCancelled means the caller cancelled the run.
	SweepCancelled SweepOutcome = "cancelled"
)

// String returns the string representation.
func (o SweepOutcome) String() string {
	return string(o)
}

// UnitFailure records a unit whose processing failed during a sweep.
type UnitFailure struct {
	Ref UnitReference
	Err error
}

// SweepCounters accumulates per-unit results.
type SweepCounters struct {
	// Attempted counts calls to the unit processor.
	Attempted int

	// NewlyProcessed counts units committed by this run, skipped ones included.
	NewlyProcessed int

	// Skipped counts units committed empty by the heuristic filter.
	Skipped int

	// Extracted counts units that went through the extraction service.
	Extracted int

	// AlreadyProcessed counts units found committed (e.g. by a concurrent run).
	AlreadyProcessed int

	// NamesFound counts names committed by this run.
	NamesFound int
}

// Add records one unit result.
func (c *SweepCounters) Add(r *ProcessResult) {
	c.Attempted++
	if r.AlreadyProcessed {
		c.AlreadyProcessed++
		return
	}
	c.NewlyProcessed++
	c.NamesFound += len(r.Names)
	if r.Skipped {
		c.Skipped++
	} else {
		c.Extracted++
	}
}

// Merge adds another set of counters.
func (c *SweepCounters) Merge(o SweepCounters) {
	c.Attempted += o.Attempted
	c.NewlyProcessed += o.NewlyProcessed
	c.Skipped += o.Skipped
	c.Extracted += o.Extracted
	c.AlreadyProcessed += o.AlreadyProcessed
	c.NamesFound += o.NamesFound
}

// GroupSweepResult is the outcome of sweeping one group.
type GroupSweepResult struct {
	RunID         string
	CollectionKey string
	Group         int

	// Pending is the number of units that were unprocessed when the sweep began.
	Pending int

	SweepCounters
	Failures []UnitFailure

	Outcome        SweepOutcome
	StoppedByLimit bool

	// Stats is the group progress after the sweep.
	Stats GroupStats
}

// CollectionSweepResult is the outcome of sweeping a whole collection.
type CollectionSweepResult struct {
	RunID         string
	CollectionKey string

	// GroupsVisited counts groups whose sweep started.
	GroupsVisited int
	Groups        []GroupSweepResult

	SweepCounters
	Failures []UnitFailure

	Outcome        SweepOutcome
	StoppedByLimit bool

	// Stats is the collection progress after the sweep.
	Stats CollectionStats
}

// SweepProgress is pushed to the caller at every unit and group boundary.
type SweepProgress struct {
	RunID         string
	CollectionKey string

	// Group is the group being swept; GroupIndex/GroupTotal locate it in a collection sweep.
	Group      int
	GroupIndex int
	GroupTotal int

	// UnitIndex is the number of pending units handled so far in this group.
	UnitIndex int
	UnitTotal int

	// Last is the result of the unit just handled, nil at group boundaries or on failure.
	Last *ProcessResult

	// LastErr is the failure of the unit just handled, if any.
	LastErr error

	// GroupDone is set on the group-boundary event.
	GroupDone bool

	// GroupStats and CollectionStats are filled on group-boundary events.
	GroupStats      *GroupStats
	CollectionStats *CollectionStats
}

// SweepOptions configures a sweep.
type SweepOptions struct {
	// Progress is invoked synchronously at every unit and group boundary.
	Progress func(SweepProgress)
}
