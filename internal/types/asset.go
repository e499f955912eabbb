package types

import (
	"strings"

	"github.com/mankiwan/news-algo/pkg/errors"
)

// Asset identifies a supported cryptocurrency.
type Asset string

const (
	AssetBTC Asset = "BTC"
	AssetETH Asset = "ETH"
)

// assetPatterns maps each supported asset to the case-insensitive substring
// patterns used to match news token fields. Matching is substring based, so a
// token like "ETHBTC" matches both assets. This is intentional and must be
// preserved for parity with historical backtest results.
var assetPatterns = map[Asset][]string{
	AssetBTC: {"BTC", "BITCOIN"},
	AssetETH: {"ETH", "ETHEREUM"},
}

// SupportedAssets returns the assets the event filter understands.
func SupportedAssets() []Asset {
	return []Asset{AssetBTC, AssetETH}
}

// Patterns returns the token match patterns for the asset, or an
// ErrCodeUnsupportedAsset error for assets outside the supported set.
func (a Asset) Patterns() ([]string, error) {
	patterns, ok := assetPatterns[a]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnsupportedAsset, "unsupported asset: %s", a)
	}

	return patterns, nil
}

// ParseAsset validates a raw asset name, case-insensitively, against the
// supported set.
func ParseAsset(raw string) (Asset, error) {
	asset := Asset(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := assetPatterns[asset]; !ok {
		return "", errors.Newf(errors.ErrCodeUnsupportedAsset, "unsupported asset: %s", raw)
	}

	return asset, nil
}
