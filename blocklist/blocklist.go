package blocklist

import (
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/odm"
)

// Scope restricts where a block applies. A global block suppresses the name
// for every entity category.
type Scope string

const (
	ScopeGlobal        Scope = "global"
	ScopeCorrespondent Scope = "correspondent"
	ScopeDocumentType  Scope = "document_type"
	ScopeTag           Scope = "tag"
)

// Blocked is a suggestion name that must never be re-proposed.
type Blocked struct {
	ID                string    `json:"id" bson:"_id"`
	SuggestionName    string    `json:"suggestionName" bson:"suggestionName"`
	NormalizedName    string    `json:"normalizedName" bson:"normalizedName"`
	Scope             Scope     `json:"scope" bson:"scope"`
	RejectionReason   string    `json:"rejectionReason" bson:"rejectionReason"`
	RejectionCategory string    `json:"rejectionCategory" bson:"rejectionCategory"`
	SourceDocumentID  int       `json:"sourceDocumentId" bson:"sourceDocumentId"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
}

func (b Blocked) Id() string { return b.ID }

func (b Blocked) CollectionName() string { return "blocked_suggestions" }

// Normalize maps a suggestion name to its blocklist key.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewBlocked builds a block entry. Uniqueness holds on (normalized name,
// scope), which the id encodes.
func NewBlocked(name string, scope Scope, reason, category string, sourceDocumentID int) Blocked {
	normalized := Normalize(name)
	id, _ := odm.HashedKey(normalized + "|" + string(scope))
	return Blocked{
		ID:                id,
		SuggestionName:    name,
		NormalizedName:    normalized,
		Scope:             scope,
		RejectionReason:   reason,
		RejectionCategory: category,
		SourceDocumentID:  sourceDocumentID,
		CreatedAt:         time.Now().UTC(),
	}
}

// Lists is an in-memory index of the blocklist, built once per filtering pass.
type Lists struct {
	global map[string]bool
	scoped map[Scope]map[string]bool
}

// BuildLists indexes block entries by scope.
func BuildLists(blocks []Blocked) Lists {
	l := Lists{
		global: make(map[string]bool),
		scoped: make(map[Scope]map[string]bool),
	}
	for _, b := range blocks {
		if b.Scope == ScopeGlobal {
			l.global[b.NormalizedName] = true
			continue
		}
		if l.scoped[b.Scope] == nil {
			l.scoped[b.Scope] = make(map[string]bool)
		}
		l.scoped[b.Scope][b.NormalizedName] = true
	}
	return l
}

// Blocked reports whether name is suppressed for the given scope. The global
// list is checked first and short-circuits the scoped check.
func (l Lists) Blocked(name string, scope Scope) bool {
	normalized := Normalize(name)
	if l.global[normalized] {
		return true
	}
	return l.scoped[scope][normalized]
}

// Suggestion is the minimal view the filter needs of a candidate.
type Suggestion interface {
	SuggestionName() string
	SuggestionScope() Scope
}

// Filter drops suggestions present in the global blocklist or in the
// blocklist scoped to their entity category. Order of survivors is preserved.
func Filter[S Suggestion](suggestions []S, lists Lists) []S {
	var out []S
	for _, s := range suggestions {
		if lists.Blocked(s.SuggestionName(), s.SuggestionScope()) {
			continue
		}
		out = append(out, s)
	}
	return out
}
