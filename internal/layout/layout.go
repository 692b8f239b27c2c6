// Package layout saves solve results as YAML and renders them as ASCII maps.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/hexwfc/internal/fileutil"
	"github.com/lawnchairsociety/hexwfc/internal/hexgrid"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

// LayoutData is the serialized form of one result and its nested results.
type LayoutData struct {
	Seed        int64             `yaml:"seed"`
	Tier        int               `yaml:"tier"`
	CatalogHash string            `yaml:"catalog_hash,omitempty"`
	RunID       string            `yaml:"run_id,omitempty"`
	SavedAt     time.Time         `yaml:"saved_at,omitempty"`
	Success     bool              `yaml:"success"`
	Parent      *hexgrid.Address  `yaml:"parent,omitempty"`
	Placements  []wfc.Placement   `yaml:"placements"`
	Ignored     []hexgrid.Address `yaml:"ignored,omitempty"`
	Failures    []string          `yaml:"failures,omitempty"`
	Children    []*LayoutData     `yaml:"children,omitempty"`
}

// FromResult converts a result tree. Only the root carries the catalog
// hash and save time.
func FromResult(res *wfc.Result, catalogHash string) *LayoutData {
	data := fromResult(res)
	data.CatalogHash = catalogHash
	data.SavedAt = time.Now().UTC()
	return data
}

func fromResult(res *wfc.Result) *LayoutData {
	data := &LayoutData{
		Seed:       res.Seed,
		Tier:       res.Tier,
		Success:    res.Success(),
		Parent:     res.Parent,
		Placements: res.Placements,
		Ignored:    res.Ignored,
	}
	for _, f := range res.Failures {
		data.Failures = append(data.Failures, f.Error())
	}
	for _, cf := range res.ClusterFailures {
		data.Failures = append(data.Failures, cf.Error())
	}
	for _, ch := range res.Children {
		data.Children = append(data.Children, fromResult(ch))
	}
	return data
}

// Walk visits d and every nested layout depth first.
func (d *LayoutData) Walk(fn func(*LayoutData)) {
	fn(d)
	for _, ch := range d.Children {
		ch.Walk(fn)
	}
}

// AllPlacements returns the placements of d and its nested layouts.
func (d *LayoutData) AllPlacements() []wfc.Placement {
	var out []wfc.Placement
	d.Walk(func(x *LayoutData) { out = append(out, x.Placements...) })
	return out
}

// AllIgnored returns the ignored addresses of d and its nested layouts.
func (d *LayoutData) AllIgnored() []hexgrid.Address {
	var out []hexgrid.Address
	d.Walk(func(x *LayoutData) { out = append(out, x.Ignored...) })
	return out
}

// SaveLayout writes the layout to a YAML file atomically.
func SaveLayout(data *LayoutData, filename string) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create layout directory: %w", err)
		}
	}
	if err := fileutil.WriteAtomic(filename, yamlData, 0644); err != nil {
		return fmt.Errorf("failed to write layout file: %w", err)
	}
	return nil
}

// LoadLayout reads a layout YAML file.
func LoadLayout(filename string) (*LayoutData, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	var data LayoutData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse layout file: %w", err)
	}
	return &data, nil
}
