package catalog

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lawnchairsociety/hexwfc/internal/fileutil"
	"github.com/lawnchairsociety/hexwfc/internal/socket"
	"golang.org/x/crypto/blake2b"
)

// SocketBundles maps tile uid to its corner socket bundle.
type SocketBundles map[string]socket.CornerBundle

// Bundles collects the corner bundles of every tile that has one.
func (c *Catalog) Bundles() SocketBundles {
	out := make(SocketBundles)
	for _, t := range c.tiles {
		if t.Corners != nil {
			out[t.ID] = *t.Corners
		}
	}
	return out
}

// ApplyBundles installs corner bundles on the catalog's tiles. Every uid
// must name a known tile.
func (c *Catalog) ApplyBundles(b SocketBundles) error {
	for id := range b {
		if _, ok := c.byID[id]; !ok {
			return fmt.Errorf("%w: bundle for unknown tile %s", socket.ErrCompatibilityDataDesync, id)
		}
	}
	for id, bundle := range b {
		c.byID[id].Corners = &bundle
	}
	return nil
}

// SaveSocketBundles writes bundles as JSON atomically.
func SaveSocketBundles(b SocketBundles, path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal socket bundles: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write socket bundles: %w", err)
	}
	return nil
}

// LoadSocketBundles reads bundles written by SaveSocketBundles.
func LoadSocketBundles(path string) (SocketBundles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read socket bundles: %w", err)
	}
	var raw map[string]struct {
		Bottom     []int `json:"bottom"`
		Top        []int `json:"top"`
		SideBottom []int `json:"side_bottom"`
		SideTop    []int `json:"side_top"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse socket bundles: %w", err)
	}
	out := make(SocketBundles, len(raw))
	for id, r := range raw {
		b, err := (&CornersYAML{Bottom: r.Bottom, Top: r.Top, SideBottom: r.SideBottom, SideTop: r.SideTop}).toBundle()
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", id, err)
		}
		out[id] = b
	}
	return out, nil
}

// fingerprintTile is the canonical form hashed by Fingerprint.
type fingerprintTile struct {
	ID         string                `json:"id"`
	Tier       int                   `json:"tier"`
	Sides      [socket.SideCount]int `json:"sides"`
	Bottom     int                   `json:"bottom"`
	Top        int                   `json:"top"`
	SidePoints []map[string]int      `json:"side_points"`
}

// Fingerprint returns a BLAKE2b-256 hash over the socket data of every tile.
// Stored compatibility data carries it so a changed catalog is detected.
func (c *Catalog) Fingerprint() string {
	canon := make([]fingerprintTile, 0, len(c.tiles))
	for _, t := range c.tiles {
		ft := fingerprintTile{
			ID:         t.ID,
			Tier:       t.Tier,
			Sides:      t.Sides,
			Bottom:     t.Bottom,
			Top:        t.Top,
			SidePoints: make([]map[string]int, socket.SideCount),
		}
		for s, pts := range t.SidePoints {
			m := make(map[string]int, len(pts))
			for k, v := range pts {
				m[k.String()] = v
			}
			ft.SidePoints[s] = m
		}
		canon = append(canon, ft)
	}
	// Marshal of plain structs, slices and string-keyed maps cannot fail.
	data, _ := json.Marshal(canon)
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
