package main

import (
	"context"
	"flag"
	"log"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/config"
	"github.com/lawnchairsociety/hexwfc/internal/logger"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
	"github.com/lawnchairsociety/hexwfc/internal/store"
)

// compatgen precomputes the tile pair cache for a catalog and writes it,
// with the socket bundles, to JSON and optionally to the store.
func main() {
	configFile := flag.String("config", "data/hexsolve.yaml", "Path to solver config YAML file")
	tilesFile := flag.String("tiles", "", "Catalog YAML (default: catalog.tiles from the config)")
	pairsOut := flag.String("pairs", "", "Pair cache output (default: catalog.pair_cache from the config)")
	bundlesOut := flag.String("bundles", "", "Write the catalog's corner socket bundles to this JSON file")
	toStore := flag.Bool("store", false, "Also save the pair cache and matrix to the configured store")
	flag.Parse()

	logConfig, _ := logger.LoadConfig(*configFile)
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}

	cc := cfg.Catalog
	if *tilesFile != "" {
		cc.Tiles = *tilesFile
	}
	out := cc.PairCache
	if *pairsOut != "" {
		out = *pairsOut
	}
	// The cache being rebuilt may be stale; do not load it.
	cc.PairCache = ""

	inputs, err := cc.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	cat := inputs.Catalog

	pairs := socket.BuildPairCache(cat.Profiles(), inputs.Directory.Matrix)
	pairs.CatalogHash = inputs.Hash
	logger.Info("Pair cache built", "tiles", pairs.TileCount, "keys", pairs.Len(), "hash", inputs.Hash)

	if out != "" {
		if err := socket.SavePairCacheJSON(pairs, out); err != nil {
			log.Fatalf("Failed to write pair cache: %v", err)
		}
		logger.Info("Pair cache written", "path", out)
	}

	if *bundlesOut != "" {
		bundles := cat.Bundles()
		if err := catalog.SaveSocketBundles(bundles, *bundlesOut); err != nil {
			log.Fatalf("Failed to write socket bundles: %v", err)
		}
		logger.Info("Socket bundles written", "path", *bundlesOut, "tiles", len(bundles))
	}

	if *toStore {
		st, err := store.Open(cfg.Store.Config)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer st.Close()

		ctx := context.Background()
		if err := st.SavePairCache(ctx, pairs); err != nil {
			log.Fatalf("Failed to store pair cache: %v", err)
		}
		if err := st.SaveMatrix(ctx, inputs.Hash, inputs.Directory.Matrix); err != nil {
			log.Fatalf("Failed to store matrix: %v", err)
		}
		logger.Info("Compatibility data stored", "driver", cfg.Store.Driver, "hash", inputs.Hash)
	}
}
