package neo4j

import "testing"

func TestRelationshipType(t *testing.T) {
	tests := []struct {
		relation string
		want     string
	}{
		{"associated_with", "ASSOCIATED_WITH"},
		{"induces", "INDUCES"},
		{"expressed-in", "EXPRESSED_IN"},
		{"measured in", "MEASURED_IN"},
		{"weird;type", "WEIRDTYPE"},
		{"", "RELATED_TO"},
	}

	for _, tt := range tests {
		if got := RelationshipType(tt.relation); got != tt.want {
			t.Fatalf("RelationshipType(%q) = %q, want %q", tt.relation, got, tt.want)
		}
	}
}
