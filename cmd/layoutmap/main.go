package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/lawnchairsociety/hexwfc/internal/config"
	"github.com/lawnchairsociety/hexwfc/internal/layout"
	"github.com/lawnchairsociety/hexwfc/internal/store"
)

func main() {
	inputFile := flag.String("input", "data/layout.yaml", "Path to layout.yaml file")
	runID := flag.String("run", "", "Render a stored run instead of a layout file")
	configFile := flag.String("config", "data/hexsolve.yaml", "Config holding the store settings (with -run)")
	tier := flag.Int("tier", -1, "Tier to display (-1 for all tiers)")
	layer := flag.Int("layer", -1, "Layer to display (-1 for all layers)")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	flag.Parse()

	var data *layout.LayoutData
	var err error
	if *runID != "" {
		data, err = loadRun(*configFile, *runID)
	} else {
		data, err = layout.LoadLayout(*inputFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var output strings.Builder
	opts := layout.RenderOptions{Tier: *tier, Layer: *layer, Legend: *showLegend}
	if err := layout.Render(&output, data, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering layout: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}

// loadRun rebuilds a flat layout from a stored run. Ignored cells are not
// stored, so only placements are shown.
func loadRun(configFile, id string) (*layout.LayoutData, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	st, err := store.Open(cfg.Store.Config)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ctx := context.Background()
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	placements, err := st.Placements(ctx, id)
	if err != nil {
		return nil, err
	}
	return &layout.LayoutData{
		Seed:        run.Seed,
		Tier:        run.Tier,
		CatalogHash: run.CatalogHash,
		RunID:       run.ID,
		SavedAt:     run.CreatedAt,
		Success:     run.Success,
		Placements:  placements,
	}, nil
}
