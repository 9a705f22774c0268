package discussion

import (
	"strings"

	"github.com/eic-hr/eic/pkg/ghdiscuss"
)

// ActionKind says whether reconciliation found an existing item.
type ActionKind int

const (
	// ActionCreate means no live item matches; create a new one.
	ActionCreate ActionKind = iota
	// ActionUpdate means an item matches; replace its body in place.
	ActionUpdate
)

// Action is the outcome of reconciling against existing board state.
type Action struct {
	Kind       ActionKind
	ExistingID string
}

// ReconcileThread matches discussions by exact title. First match wins;
// the board is ordered newest-first, so that is the thread the previous
// run created.
func ReconcileThread(existing []ghdiscuss.Discussion, title string) (Action, *ghdiscuss.Discussion) {
	for i := range existing {
		if existing[i].Title == title {
			return Action{Kind: ActionUpdate, ExistingID: existing[i].ID}, &existing[i]
		}
	}
	return Action{Kind: ActionCreate}, nil
}

// ReconcileComment matches comments by embedded marker token. At most
// one live comment per marker is assumed; the first match is updated in
// place and no duplicate is ever created.
func ReconcileComment(existing []ghdiscuss.Comment, marker string) Action {
	for _, c := range existing {
		if strings.Contains(c.Body, marker) {
			return Action{Kind: ActionUpdate, ExistingID: c.ID}
		}
	}
	return Action{Kind: ActionCreate}
}
