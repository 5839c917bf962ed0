// Package classify routes a free-text user request to the advisory agents
// that should handle it. Classification is deterministic and allocation-light:
// fixed regexp tables are compiled once and counted per request.
package classify

import "regexp"

// Agent names in canonical emission order.
const (
	AgentTravel    = "travel"
	AgentFinancial = "financial"
	AgentHealth    = "health"
)

// agentOrder is the canonical ordering of the emitted agent list. Downstream
// stage naming and fan-out keys depend on agent name strings, so the order
// must be stable across calls.
var agentOrder = []string{AgentTravel, AgentFinancial, AgentHealth}

// topicByAgent maps an agent name to its evidence topic key.
var topicByAgent = map[string]string{
	AgentTravel:    "travel",
	AgentFinancial: "finance",
	AgentHealth:    "health",
}

var travelPatterns = compileAll(
	`\btrip\b`, `\btravel\b`, `\bflight\b`, `\bfly\b`, `\btrain\b`,
	`\bbus\b`, `\broute\b`, `\bhotel\b`, `\bstay\b`, `\bbook\b`,
	`\bitinerary\b`, `\bvisit\b`, `\btour\b`, `\bvacation\b`,
	`\bfrom\b.*\bto\b`, `\bdestination\b`, `\bhostel\b`, `\bresort\b`,
	`\bairbnb\b`, `\baccommodation\b`, `\bplan\s+a\s+trip\b`,
)

var healthPatterns = compileAll(
	`\bdoctor\b`, `\bhealth\b`, `\bmedical\b`, `\bdisease\b`,
	`\bsymptom\b`, `\btreatment\b`, `\bdiagnos`, `\bspecialist\b`,
	`\bhospital\b`, `\bpain\b`, `\bfever\b`, `\bcough\b`,
	`\bheart\b`, `\bdiabet`, `\bcancer\b`, `\bskin\b`,
	`\beye\b`, `\bdental\b`, `\bmental\b`, `\bdepression\b`,
	`\banxiety\b`, `\bwellness\b`, `\bnutrition\b`, `\bdiet\b`,
	`\bsurger`, `\btherapy\b`, `\binfection\b`, `\ballerg`,
	`\bbone\b`, `\bjoint\b`, `\bheadache\b`, `\bmigraine\b`,
	`\bblood\s*pressure\b`, `\bcholesterol\b`, `\blung\b`, `\bkidney\b`,
)

var financePatterns = compileAll(
	`\bbudget\b`, `\bfinance\b`, `\binvest`, `\bsaving`,
	`\bmoney\b`, `\bcost\b`, `\bafford`, `\bexpense\b`,
	`\btax\b`, `\bloan\b`, `\binsurance\b`, `\bretirement\b`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// matchCount returns the number of distinct patterns that match the message.
// Each pattern counts at most once regardless of how often it occurs.
func matchCount(patterns []*regexp.Regexp, msg string) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(msg) {
			n++
		}
	}
	return n
}

// Classify inspects a raw user message and returns the agents that must run,
// in canonical order. A topic activates when at least one of its patterns
// matches. Travel always pulls in financial for affordability support, and a
// message that matches nothing activates all three agents.
func Classify(message string) []string {
	active := map[string]bool{}
	if matchCount(travelPatterns, message) >= 1 {
		active[AgentTravel] = true
	}
	if matchCount(healthPatterns, message) >= 1 {
		active[AgentHealth] = true
	}
	if matchCount(financePatterns, message) >= 1 {
		active[AgentFinancial] = true
	}

	if active[AgentTravel] {
		active[AgentFinancial] = true
	}

	if len(active) == 0 {
		for _, name := range agentOrder {
			active[name] = true
		}
	}

	out := make([]string, 0, len(active))
	for _, name := range agentOrder {
		if active[name] {
			out = append(out, name)
		}
	}
	return out
}

// Topic returns the evidence topic key for an agent name. Unknown agents map
// to themselves.
func Topic(agent string) string {
	if t, ok := topicByAgent[agent]; ok {
		return t
	}
	return agent
}
