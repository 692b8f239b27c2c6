package wfc

import (
	"errors"
	"testing"
)

func TestParseSettingEnums(t *testing.T) {
	if o, err := ParseCollapseOrder("layer-by-layer"); err != nil || o != LayerByLayer {
		t.Errorf("ParseCollapseOrder = %v, %v", o, err)
	}
	if o, _ := ParseCollapseOrder(""); o != EdgesFirst {
		t.Errorf("empty collapse order = %v, want edges-first", o)
	}
	if p, err := ParseEdgeWallPolicy("exclusive"); err != nil || p != WallExclusive {
		t.Errorf("ParseEdgeWallPolicy = %v, %v", p, err)
	}
	if p, err := ParsePropagation("neighbors"); err != nil || p != PropagateNeighbors {
		t.Errorf("ParsePropagation = %v, %v", p, err)
	}

	bad := []func() error{
		func() error { _, err := ParseCollapseOrder("spiral"); return err },
		func() error { _, err := ParseEdgeWallPolicy("always"); return err },
		func() error { _, err := ParsePropagation("deep"); return err },
	}
	for i, f := range bad {
		if err := f(); !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("case %d: err = %v, want ErrInvalidSettings", i, err)
		}
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		ok     bool
	}{
		{"defaults", func(*Settings) {}, true},
		{"zero attempts", func(s *Settings) { s.MaxAttempts = 0 }, false},
		{"chance above one", func(s *Settings) { s.ClusterChance = 1.5 }, false},
		{"negative tier", func(s *Settings) { s.Tier = -1 }, false},
		{"negative delay", func(s *Settings) { s.StartDelay = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := s.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, ok want %v", err, tt.ok)
			}
		})
	}
}
