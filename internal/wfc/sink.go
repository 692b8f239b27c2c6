package wfc

import "github.com/lawnchairsociety/hexwfc/internal/hexgrid"

// PlacementSink receives every cell the solver resolves, in order.
type PlacementSink interface {
	OnCellResolved(addr hexgrid.Address, tileID string, rotation int)
}

// SinkFunc adapts a function to PlacementSink.
type SinkFunc func(addr hexgrid.Address, tileID string, rotation int)

// OnCellResolved calls f.
func (f SinkFunc) OnCellResolved(addr hexgrid.Address, tileID string, rotation int) {
	f(addr, tileID, rotation)
}

// MultiSink fans placements out to several sinks.
type MultiSink []PlacementSink

// OnCellResolved forwards to every non-nil sink.
func (m MultiSink) OnCellResolved(addr hexgrid.Address, tileID string, rotation int) {
	for _, s := range m {
		if s != nil {
			s.OnCellResolved(addr, tileID, rotation)
		}
	}
}
