// internal/classifier/classifier.go
package classifier

import (
	"strings"
	"unicode/utf8"
)

// Scenario ids the rules resolve to.
const (
	ScenarioManufacturing = "manufacturing-custom-fabrication"
	ScenarioConstruction  = "construction-project-bid"
	ScenarioEnergy        = "energy-renewable-project"
	ScenarioLegal         = "legal-compliance-inquiry"
	ScenarioEmergency     = "emergency-service-request"
	ScenarioBilling       = "support-billing"
	ScenarioTechnical     = "technical-support"
	ScenarioEnterpriseRFP = "rfp-enterprise"
)

// Rule maps a scenario to keyword groups. A group matches when any of its
// keywords is a substring of the lower-cased text; the rule fires when any
// group matches.
type Rule struct {
	ScenarioID string
	Groups     [][]string
}

// rules is evaluated top to bottom and the first rule that fires wins.
// Domain-specific scenarios come before the generic ones. Note that
// "api integrations" in the last rule can never fire on its own because
// "api integration" above already catches it.
var rules = []Rule{
	{
		ScenarioID: ScenarioManufacturing,
		Groups: [][]string{
			{"penn stainless"},
			{"stainless steel", "fabrication", "tanks", "asme"},
			{"316l", "pressure vessel", "welding"},
		},
	},
	{
		ScenarioID: ScenarioConstruction,
		Groups: [][]string{
			{"tiny's construction"},
			{"construction", "bidding", "retail addition"},
			{"concrete foundation", "steel frame", "shopping center"},
		},
	},
	{
		ScenarioID: ScenarioEnergy,
		Groups: [][]string{
			{"novitium energy"},
			{"250 mw", "solar farm", "battery energy storage"},
			{"photovoltaic", "grid interconnection", "138kv"},
		},
	},
	{
		ScenarioID: ScenarioLegal,
		Groups: [][]string{
			{"globaltech"},
			{"eu ai act", "compliance", "chatbot"},
			{"ce marking", "dpia", "conformity assessment"},
		},
	},
	{
		ScenarioID: ScenarioEmergency,
		Groups: [][]string{
			{"metro transit"},
			{"urgent", "water main break", "flooded"},
			{"union station", "tunnel", "50,000 gallons"},
		},
	},
	{
		ScenarioID: ScenarioBilling,
		Groups: [][]string{
			{"acc-789456"},
			{"invoice", "charged $299", "basic plan"},
			{"downgraded", "refund", "account number"},
		},
	},
	{
		ScenarioID: ScenarioTechnical,
		Groups: [][]string{
			{"app-2024-x71"},
			{"api integration", "403 forbidden", "1,200+ users"},
			{"sync user data", "stopped working", "app id"},
		},
	},
	{
		ScenarioID: ScenarioEnterpriseRFP,
		Groups: [][]string{
			{"500-employee", "comprehensive software"},
			{"project management", "crm", "enterprise security"},
			{"annual licensing", "api integrations"},
		},
	},
}

// Classify returns the id of the first rule that fires on text, or "" with
// ok=false when none does. Only case is normalized.
func Classify(text string) (scenarioID string, ok bool) {
	normalized := strings.ToLower(text)
	for _, rule := range rules {
		if rule.matches(normalized) {
			return rule.ScenarioID, true
		}
	}
	return "", false
}

// Match is Classify plus the keyword that decided it, for logging and the
// catalog tool.
type Match struct {
	ScenarioID string
	Keyword    string
}

// Explain reports which rule and keyword fired, or nil.
func Explain(text string) *Match {
	normalized := strings.ToLower(text)
	for _, rule := range rules {
		if kw := rule.firstKeyword(normalized); kw != "" {
			return &Match{ScenarioID: rule.ScenarioID, Keyword: kw}
		}
	}
	return nil
}

// Rules returns a copy of the rule table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		groups := make([][]string, len(r.Groups))
		for j, g := range r.Groups {
			groups[j] = append([]string(nil), g...)
		}
		out[i] = Rule{ScenarioID: r.ScenarioID, Groups: groups}
	}
	return out
}

func (r Rule) matches(normalized string) bool {
	return r.firstKeyword(normalized) != ""
}

func (r Rule) firstKeyword(normalized string) string {
	for _, group := range r.Groups {
		for _, kw := range group {
			if strings.Contains(normalized, kw) {
				return kw
			}
		}
	}
	return ""
}

// Input type labels shown next to the input while it is typed.
const (
	TypeRFP              = "RFP"
	TypeSupportEmail     = "Support Email"
	TypeTechnicalSupport = "Technical Support"
	TypeSalesInquiry     = "Sales Inquiry"
	TypeGeneralInquiry   = "General Inquiry"
)

const minDetectLength = 10

// DetectInputType gives a coarse label for text, or "" when it is too short
// to say. It is independent of Classify.
func DetectInputType(text string) string {
	if utf8.RuneCountInString(text) < minDetectLength {
		return ""
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "rfp") || strings.Contains(lower, "proposal"):
		return TypeRFP
	case strings.Contains(text, "@") && (strings.Contains(lower, "invoice") || strings.Contains(lower, "billing")):
		return TypeSupportEmail
	case strings.Contains(lower, "api") || strings.Contains(lower, "integration"):
		return TypeTechnicalSupport
	case strings.Contains(lower, "quote") || strings.Contains(lower, "pricing"):
		return TypeSalesInquiry
	default:
		return TypeGeneralInquiry
	}
}
