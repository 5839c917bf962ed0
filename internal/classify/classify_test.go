package classify

import (
	"reflect"
	"testing"
)

func TestClassifyRouting(t *testing.T) {
	cases := []struct {
		message string
		want    []string
	}{
		{"Plan a trip from Delhi to Goa", []string{"travel", "financial"}},
		{"I have chest pain and a fever", []string{"health"}},
		{"how should I budget my savings", []string{"financial"}},
		{"book a hotel and see a doctor there", []string{"travel", "financial", "health"}},
		{"hello there", []string{"travel", "financial", "health"}},
	}
	for _, c := range cases {
		got := Classify(c.message)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Classify(%q) = %v, want %v", c.message, got, c.want)
		}
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	msg := "Plan a trip from Delhi to Goa on a tight budget"
	first := Classify(msg)
	second := Classify(msg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification is not stable: %v vs %v", first, second)
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	lower := Classify("plan a trip to goa")
	upper := Classify("PLAN A TRIP TO GOA")
	if !reflect.DeepEqual(lower, upper) {
		t.Fatalf("case sensitivity detected: %v vs %v", lower, upper)
	}
}

func TestTravelAlwaysImpliesFinancial(t *testing.T) {
	messages := []string{
		"plan a trip to goa",
		"find me a flight",
		"itinerary for a vacation in rome",
		"hotel near the beach",
	}
	for _, msg := range messages {
		agents := Classify(msg)
		hasTravel, hasFinancial := false, false
		for _, a := range agents {
			switch a {
			case AgentTravel:
				hasTravel = true
			case AgentFinancial:
				hasFinancial = true
			}
		}
		if hasTravel && !hasFinancial {
			t.Fatalf("Classify(%q) = %v: travel without financial", msg, agents)
		}
	}
}

func TestAmbiguousQueryActivatesAll(t *testing.T) {
	got := Classify("xyzzy")
	want := []string{"travel", "financial", "health"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Classify fallback = %v, want %v", got, want)
	}
}

func TestDistinctPatternCountNotOccurrences(t *testing.T) {
	// "trip trip trip" matches a single travel pattern many times; it must
	// still activate travel exactly like a single occurrence would.
	got := Classify("trip trip trip")
	want := []string{"travel", "financial"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Classify(repeated pattern) = %v, want %v", got, want)
	}
}

func TestTopicMapping(t *testing.T) {
	if Topic(AgentFinancial) != "finance" {
		t.Fatalf("financial agent should map to finance topic")
	}
	if Topic(AgentTravel) != "travel" || Topic(AgentHealth) != "health" {
		t.Fatalf("travel/health topics should be identity mappings")
	}
	if Topic("other") != "other" {
		t.Fatalf("unknown agents map to themselves")
	}
}
