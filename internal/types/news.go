package types

import (
	"github.com/moznion/go-optional"
)

// NewsEvent is a single news item as produced by a news loader. Events without
// a resolvable timestamp are kept at load time and excluded by the event filter.
type NewsEvent struct {
	// Timestamp is the event time in seconds since epoch, if one could be resolved.
	Timestamp optional.Option[int64]
	// Token is the raw asset/token field of the news row.
	Token string
	// Fields holds the remaining source columns untouched, keyed by column name.
	Fields map[string]string
}
