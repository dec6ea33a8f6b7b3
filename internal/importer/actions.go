package importer

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Action is one step of the import pipeline
type Action string

const (
	ActionPurge         Action = "Purge"
	ActionTickers       Action = "Tickers"
	ActionTickerDetails Action = "Ticker Details"
	ActionSplits        Action = "Splits"
	ActionDividends     Action = "Dividends"
	ActionFlatFiles     Action = "Flat Files"
)

// pipeline order
var actionOrder = []Action{
	ActionPurge,
	ActionTickers,
	ActionTickerDetails,
	ActionSplits,
	ActionDividends,
	ActionFlatFiles,
}

// normalizeKey folds case and drops spaces so "flat files", "FlatFiles" and
// "Flat Files" all name the same thing.
func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// ParseAction resolves a configured action name.
func ParseAction(name string) (Action, bool) {
	key := normalizeKey(name)
	for _, a := range actionOrder {
		if normalizeKey(string(a)) == key {
			return a, true
		}
	}
	return "", false
}

// ImportAction is a configured action with its detail tokens
type ImportAction struct {
	Name    Action
	Details []string
}

// First returns the first detail token, or "" when there are none.
func (a ImportAction) First() string {
	if len(a.Details) == 0 {
		return ""
	}
	return a.Details[0]
}

// SplitDetails splits a comma-separated detail string, trimming and dropping empties.
func SplitDetails(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ActionPlan is the validated, ordered set of actions for one run
type ActionPlan struct {
	actions []ImportAction
}

// NewActionPlan builds a plan from action name -> detail string. The Flat
// Files action takes its details from filePrefixes instead of its value.
// Unknown names are logged and skipped; a plan with no valid action is a
// *ConfigurationError.
func NewActionPlan(actions map[string]string, filePrefixes []string) (*ActionPlan, error) {
	// map order is random; sort so warnings come out stable
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)

	found := make(map[Action]ImportAction)
	for _, name := range names {
		a, ok := ParseAction(name)
		if !ok {
			log.WithField("action", name).Warn("ignoring unknown import action")
			continue
		}

		details := SplitDetails(actions[name])
		if a == ActionFlatFiles {
			details = nil
			for _, p := range filePrefixes {
				if p = strings.TrimSpace(p); p != "" {
					details = append(details, p)
				}
			}
		}
		found[a] = ImportAction{Name: a, Details: details}
	}

	if len(found) == 0 {
		return nil, &ConfigurationError{Field: "Import Actions", Message: "no valid actions configured"}
	}

	plan := &ActionPlan{}
	for _, a := range actionOrder {
		if ia, ok := found[a]; ok {
			plan.actions = append(plan.actions, ia)
		}
	}
	return plan, nil
}

// Find returns the configured action with name a.
func (p *ActionPlan) Find(a Action) (ImportAction, bool) {
	for _, ia := range p.actions {
		if ia.Name == a {
			return ia, true
		}
	}
	return ImportAction{}, false
}

// Actions returns the plan in pipeline order.
func (p *ActionPlan) Actions() []ImportAction {
	out := make([]ImportAction, len(p.actions))
	copy(out, p.actions)
	return out
}
