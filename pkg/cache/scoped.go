package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server uses it to
// keep its entries apart from a CLI sharing the same Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [NewDefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlotKey generates a prefixed plot key.
func (k *ScopedKeyer) PlotKey(seed string, opts PlotKeyOpts) string {
	return k.prefix + k.inner.PlotKey(seed, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(plotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(plotHash, opts)
}

// TreeKey generates a prefixed tree diagram key.
func (k *ScopedKeyer) TreeKey(plotHash, format string) string {
	return k.prefix + k.inner.TreeKey(plotHash, format)
}
