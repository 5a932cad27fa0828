package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// keyVersion is bumped whenever generation output changes for the same
// inputs, so stale entries are never served.
const keyVersion = 1

// Keyer builds cache keys.
type Keyer interface {
	// PlotKey identifies the plot generated from seed with opts.
	PlotKey(seed string, opts PlotKeyOpts) string

	// ArtifactKey identifies a rendering of the plot whose JSON export
	// hashes to plotHash.
	ArtifactKey(plotHash string, opts ArtifactKeyOpts) string

	// TreeKey identifies a subdivision tree diagram.
	TreeKey(plotHash, format string) string
}

// PlotKeyOpts holds every option that changes a generated plot.
type PlotKeyOpts struct {
	Width      float64 `json:"w"`
	Height     float64 `json:"h"`
	Pad        float64 `json:"pad"`
	MaxDepth   int     `json:"depth"`
	PenWidth   float64 `json:"pen"`
	Density    float64 `json:"density"`
	Symmetric  bool    `json:"sym,omitempty"`
	Sun        bool    `json:"sun,omitempty"`
	Background bool    `json:"bg,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Palette     string  `json:"palette"`
	StrokeWidth float64 `json:"stroke,omitempty"`
	Paper       bool    `json:"paper,omitempty"`
	Blend       bool    `json:"blend,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PlotKey implements [Keyer].
func (DefaultKeyer) PlotKey(seed string, opts PlotKeyOpts) string {
	return hashKey("plot", keyVersion, seed, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(plotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", keyVersion, plotHash, opts)
}

// TreeKey implements [Keyer]. Tree diagrams are cheap to hash by hand, so the
// key stays readable.
func (DefaultKeyer) TreeKey(plotHash, format string) string {
	return fmt.Sprintf("tree:%s:%s", plotHash, format)
}

// hashKey returns prefix followed by the SHA-256 of the JSON-encoded parts.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(parts)
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data. Plot exports are addressed by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
