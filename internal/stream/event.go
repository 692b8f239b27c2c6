package stream

import (
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// Event types sent to viewers.
const (
	EventPlacement = "placement"
	EventRunStart  = "run_start"
	EventRunEnd    = "run_end"
)

// Event is one JSON message on the stream.
type Event struct {
	Type string `json:"type"`

	// placement
	Address  *hexgrid.Address `json:"address,omitempty"`
	Tile     string           `json:"tile,omitempty"`
	Rotation int              `json:"rotation"`

	// run_start / run_end; Run is set on both, also for run 0
	Run     *int   `json:"run,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
	Placed  int    `json:"placed,omitempty"`
	Ignored int    `json:"ignored,omitempty"`
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

func placementEvent(addr hexgrid.Address, tileID string, rotation int) Event {
	return Event{Type: EventPlacement, Address: &addr, Tile: tileID, Rotation: rotation}
}

func runStartEvent(run int, seed int64) Event {
	return Event{Type: EventRunStart, Run: &run, Seed: seed}
}

func runEndEvent(run int, res *wfc.Result, err error) Event {
	ev := Event{Type: EventRunEnd, Run: &run}
	if res != nil {
		ev.Seed = res.Seed
		ev.Placed = len(res.AllPlacements())
		res.Walk(func(r *wfc.Result) { ev.Ignored += len(r.Ignored) })
		ev.Success = err == nil && res.Success()
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
