package config

import (
	"strings"

	"github.com/trade-engine/market-archiver/internal/domain"
)

// Normalizer maps source asset tickers and timeframe tokens into the
// canonical vocabulary used across stored data. Lookups are
// case-insensitive on input. A miss returns the input unchanged:
// unknown listings pass through rather than failing, which keeps the
// pipeline forward compatible with assets the vocabulary has not
// caught up with yet.
type Normalizer struct {
	assets     map[string]string
	timeframes map[string]string
}

// NewNormalizer builds a normalizer from vocabulary tables. Table
// keys are folded to a canonical case once, up front.
func NewNormalizer(vocab Vocabulary) *Normalizer {
	n := &Normalizer{
		assets:     make(map[string]string, len(vocab.Assets)),
		timeframes: make(map[string]string, len(vocab.Timeframes)),
	}
	for raw, canonical := range vocab.Assets {
		n.assets[strings.ToUpper(raw)] = canonical
	}
	for raw, canonical := range vocab.Timeframes {
		n.timeframes[strings.ToLower(raw)] = canonical
	}
	return n
}

// NormalizeAsset converts an exchange ticker to its canonical pair.
// Unknown tickers are returned verbatim.
func (n *Normalizer) NormalizeAsset(asset string) string {
	if canonical, ok := n.assets[strings.ToUpper(asset)]; ok {
		return canonical
	}
	return asset
}

// NormalizeTimeframe converts a source timeframe token to its
// canonical form. Unknown tokens are returned verbatim.
func (n *Normalizer) NormalizeTimeframe(timeframe string) string {
	if canonical, ok := n.timeframes[strings.ToLower(timeframe)]; ok {
		return canonical
	}
	return timeframe
}

// IsKnownAsset reports whether the ticker has a vocabulary mapping.
// Used for observability only; normalization never rejects input.
func (n *Normalizer) IsKnownAsset(asset string) bool {
	_, ok := n.assets[strings.ToUpper(asset)]
	return ok
}

// IsKnownTimeframe reports whether the token has a vocabulary mapping.
func (n *Normalizer) IsKnownTimeframe(timeframe string) bool {
	_, ok := n.timeframes[strings.ToLower(timeframe)]
	return ok
}

// Canonicalize replaces the asset and timeframe of a raw descriptor
// with their canonical forms.
func (n *Normalizer) Canonicalize(raw domain.RawFileDescriptor) domain.CanonicalFileDescriptor {
	canonical := domain.CanonicalFileDescriptor(raw)
	canonical.Asset = n.NormalizeAsset(raw.Asset)
	canonical.Timeframe = n.NormalizeTimeframe(raw.Timeframe)
	return canonical
}
