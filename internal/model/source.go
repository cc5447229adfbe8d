package model

import "time"

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Agencies, academic institutions, official bodies
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML output
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText reads a tier name; unknown names read as TierUnknown
func (t *AuthorityTier) UnmarshalText(text []byte) error {
	*t = ParseTier(string(text))
	return nil
}

// ParseTier returns the tier named s
func ParseTier(s string) AuthorityTier {
	switch s {
	case "primary":
		return TierPrimary
	case "secondary":
		return TierSecondary
	case "tertiary":
		return TierTertiary
	default:
		return TierUnknown
	}
}

// FetchMeta contains HTTP metadata from fetching an article
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// SourceCheck is the result of checking that a fact record's source is reachable
type SourceCheck struct {
	FactID       string        `json:"fact_id"`
	URL          string        `json:"url"`
	IsAccessible bool          `json:"is_accessible"`
	StatusCode   int           `json:"status_code,omitempty"`
	LastModified *time.Time    `json:"last_modified,omitempty"`
	Age          *int          `json:"age_days,omitempty"` // Days since last modified
	IsStale      bool          `json:"is_stale"`           // > 1 year old
	IsDead       bool          `json:"is_dead"`            // 404, 410, or unreachable
	RedirectURL  string        `json:"redirect_url,omitempty"`
	Authority    AuthorityTier `json:"authority"`
	Error        string        `json:"error,omitempty"`
}
