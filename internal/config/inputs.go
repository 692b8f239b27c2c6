package config

import (
	"fmt"

	"github.com/lawnchairsociety/hexwfc/internal/catalog"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
)

// Inputs are the loaded authoring files of a solve.
type Inputs struct {
	Catalog   *catalog.Catalog
	Directory *socket.Directory
	// Hash is the catalog fingerprint after socket bundles are applied.
	Hash string
}

// Load reads the catalog, its socket bundles, the socket matrix and the
// pair cache, and checks that they agree. Without a matrix file every
// socket id meets only itself; the pair cache is optional.
func (c *CatalogConfig) Load() (*Inputs, error) {
	cat, err := catalog.LoadCatalogYAML(c.Tiles)
	if err != nil {
		return nil, err
	}
	if c.Sockets != "" {
		bundles, err := catalog.LoadSocketBundles(c.Sockets)
		if err != nil {
			return nil, err
		}
		if err := cat.ApplyBundles(bundles); err != nil {
			return nil, err
		}
	}

	var m *socket.Matrix
	if c.Matrix != "" {
		if m, err = socket.LoadMatrixJSON(c.Matrix, 0); err != nil {
			return nil, err
		}
	} else {
		m = socket.IdentityMatrix(cat.MaxSocketID() + 1)
	}

	hash := cat.Fingerprint()
	var pairs *socket.PairCache
	if c.PairCache != "" {
		if pairs, err = socket.LoadPairCacheJSON(c.PairCache, hash, cat.Len()); err != nil {
			return nil, err
		}
	}

	dir := socket.NewDirectory(m, pairs)
	if err := dir.CheckCatalog(cat.MaxSocketID(), hash, cat.Len()); err != nil {
		return nil, fmt.Errorf("compatibility data: %w", err)
	}
	return &Inputs{Catalog: cat, Directory: dir, Hash: hash}, nil
}
