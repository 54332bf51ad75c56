// Package intent resolves one user turn into a typed Intent: what the
// user wants (kind), where (scope/region), about which metric, and over
// which time window.
package intent

// Kind is the high-level category of a user turn.
type Kind string

const (
	KindGreet       Kind = "greet"
	KindNews        Kind = "news"
	KindReport      Kind = "report"
	KindExplain     Kind = "explain"
	KindDataQuery   Kind = "data_question"
	KindAdHocQuery  Kind = "ad_hoc_query"
	KindTrend       Kind = "trend"
	KindCompare     Kind = "compare"
	KindChitchat    Kind = "chitchat"
	KindUnknown     Kind = "unknown"
)

// Scope says whether a turn targets the whole country or a single UF.
type Scope string

const (
	ScopeNational Scope = "br"
	ScopeRegional Scope = "uf"
)

// DefaultDaysBack is the window applied when the text carries no
// temporal cue.
const DefaultDaysBack = 14

// Intent is the resolved interpretation of a single user turn. The most
// recent Intent is kept by the caller as context for exactly one
// follow-up turn; nothing here is persisted.
type Intent struct {
	Kind       Kind    `json:"kind"`
	Metric     string  `json:"metric,omitempty"`
	Scope      Scope   `json:"scope"`
	Region     string  `json:"region,omitempty"`
	Confidence float64 `json:"confidence"`
	DaysBack   int     `json:"days_back"`
}

// Unknown is the sentinel returned whenever classification cannot
// produce a usable result. Callers must not dispatch it to any
// data-fetching handler.
func Unknown() Intent {
	return Intent{Kind: KindUnknown, Scope: ScopeNational, Confidence: 0, DaysBack: DefaultDaysBack}
}

// Canonical enforces the scope/region invariant: a region implies
// regional scope, and regional scope without a region degrades to
// national.
func (it Intent) Canonical() Intent {
	if it.Region != "" {
		it.Scope = ScopeRegional
	} else if it.Scope == ScopeRegional {
		it.Scope = ScopeNational
	}
	if it.Scope == "" {
		it.Scope = ScopeNational
	}
	if it.DaysBack <= 0 {
		it.DaysBack = DefaultDaysBack
	}
	return it
}

// IsDataFetching reports whether dispatching this intent would touch the
// query engine or an external provider.
func (it Intent) IsDataFetching() bool {
	switch it.Kind {
	case KindNews, KindReport, KindDataQuery, KindAdHocQuery, KindTrend, KindCompare:
		return true
	}
	return false
}

// ValidKind reports membership in the closed kind set.
func ValidKind(k Kind) bool {
	switch k {
	case KindGreet, KindNews, KindReport, KindExplain, KindDataQuery,
		KindAdHocQuery, KindTrend, KindCompare, KindChitchat, KindUnknown:
		return true
	}
	return false
}
