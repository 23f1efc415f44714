package gift

import (
	"strings"

	"shopgifter/internal/model"
)

type rule struct {
	name    string
	match   func(status int, body string) bool
	outcome model.Outcome
}

func contains(subs ...string) func(int, string) bool {
	return func(_ int, body string) bool {
		for _, s := range subs {
			if strings.Contains(body, s) {
				return true
			}
		}
		return false
	}
}

// rules is evaluated top to bottom against the lower-cased body; the first
// match wins. Error-code rules match on the code suffix.
var rules = []rule{
	{
		name: "delivered",
		match: func(status int, body string) bool {
			return status == 200 &&
				strings.Contains(body, "profilechanges") &&
				!strings.Contains(body, "errors.com.epicgames")
		},
		outcome: model.OutcomeSuccess,
	},
	{name: "already owns bundle items", match: contains("user already owns items from this bundle"), outcome: model.OutcomeSkipItem},
	{name: "bundle fully owned", match: contains("all items in this bundle are already owned"), outcome: model.OutcomeSkipItem},
	{name: "invalid parameter", match: contains("invalid_parameter"), outcome: model.OutcomeSkipItem},
	{name: "receiver owns item", match: contains("receiver_owns_item_from_bundle"), outcome: model.OutcomeSkipItem},
	{name: "gift limit reached", match: contains("gift_limit_reached"), outcome: model.OutcomeRotateBot},
	{name: "sender cannot pay", match: contains("insufficient", "gift_limit", "vbucks", "currency"), outcome: model.OutcomeRotateBot},
	{name: "unclassified", match: func(int, string) bool { return true }, outcome: model.OutcomeRotateBot},
}

// Classify maps a gift response to an outcome.
func Classify(status int, body string) model.Outcome {
	outcome, _ := classify(status, body)
	return outcome
}

func classify(status int, body string) (model.Outcome, string) {
	lower := strings.ToLower(body)
	for _, r := range rules {
		if r.match(status, lower) {
			return r.outcome, r.name
		}
	}
	// unreachable, the last rule always matches
	return model.OutcomeRotateBot, "unclassified"
}

// ClassifyError maps a submission error to an outcome. Any error that kept a
// response from arriving is a Failure, whatever its kind.
func ClassifyError(error) model.Outcome {
	return model.OutcomeFailure
}

// RuleInfo describes one classifier rule.
type RuleInfo struct {
	Name    string
	Outcome model.Outcome
}

// Rules lists the classifier rules in evaluation order.
func Rules() []RuleInfo {
	out := make([]RuleInfo, len(rules))
	for i, r := range rules {
		out[i] = RuleInfo{Name: r.name, Outcome: r.outcome}
	}
	return out
}
