package orchestrator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/classify"
)

// DetectConflicts scans the aggregated agent results and emits human-readable
// warnings for affordability risks, high-severity risk entries and
// low-confidence agents. Output order is deterministic: agents are visited in
// canonical order regardless of map iteration.
func DetectConflicts(results map[string]map[string]any) []string {
	conflicts := []string{}

	if fin, ok := results[classify.AgentFinancial]; ok {
		switch nestedString(fin, "plan", "travel_affordability_check", "status") {
		case "likely_not_ok":
			conflicts = append(conflicts, "Financial agent flagged affordability risk: consider cheaper options or extending your savings timeline.")
		case "uncertain":
			conflicts = append(conflicts, "Financial agent is uncertain about affordability: review the cost breakdown carefully.")
		}
	}

	for _, name := range orderedAgentNames(results) {
		data := results[name]
		for _, raw := range asSlice(data["risks"]) {
			risk, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if severity, _ := risk["severity"].(string); severity == "high" {
				label, _ := risk["risk"].(string)
				if label == "" {
					label = "unknown"
				}
				conflicts = append(conflicts, fmt.Sprintf("%s flagged high-severity risk: %s", titleCase(name), label))
			}
		}
	}

	for _, name := range orderedAgentNames(results) {
		if conf, ok := asFloat(results[name]["confidence"]); ok && conf < 0.4 {
			conflicts = append(conflicts, fmt.Sprintf("%s agent has low confidence (%.0f%%): may need more evidence.", titleCase(name), conf*100))
		}
	}

	return conflicts
}

// orderedAgentNames returns the result keys in canonical agent order, with
// any unexpected keys appended in sorted order.
func orderedAgentNames(results map[string]map[string]any) []string {
	canonical := []string{classify.AgentTravel, classify.AgentFinancial, classify.AgentHealth}
	names := make([]string, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, name := range canonical {
		if _, ok := results[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	var extra []string
	for name := range results {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func nestedString(m map[string]any, keys ...string) string {
	cur := m
	for i, key := range keys {
		if i == len(keys)-1 {
			s, _ := cur[key].(string)
			return s
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			return ""
		}
		cur = next
	}
	return ""
}

func asSlice(raw any) []any {
	s, _ := raw.([]any)
	return s
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
