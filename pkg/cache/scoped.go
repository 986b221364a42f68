package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// the buffer codec, so blobs written in an older layout become misses.
//
//	keyer := cache.NewScopedKeyer(nil, grid.CodecTag+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// BufferKey returns the prefixed inner key.
func (k *ScopedKeyer) BufferKey(opts BufferKeyOpts) string {
	return k.prefix + k.inner.BufferKey(opts)
}
