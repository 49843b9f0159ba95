package llm

import "testing"

func TestExtractJSONIdentityOnValidJSON(t *testing.T) {
	t.Parallel()

	input := `{"articles": [], "processed_at": "2025-01-01T00:00:00Z"}`
	if got := ExtractJSON(input); got != input {
		t.Fatalf("valid JSON was modified: %q", got)
	}
}

func TestExtractJSONFencedBlock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "tagged fence",
			input: "Here is your data:\n```json\n{\"ideas\": []}\n```\nHope it helps!",
			want:  `{"ideas": []}`,
		},
		{
			name:  "untagged fence",
			input: "```\n{\"ideas\": []}\n```",
			want:  `{"ideas": []}`,
		},
		{
			name:  "no fence falls back to trimmed text",
			input: "  not json at all  ",
			want:  "not json at all",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractJSON(tc.input); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractJSONIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"```json\n{\"a\": 1}\n```",
		`{"a": 1}`,
		"plain prose response",
	}

	for _, input := range inputs {
		once := ExtractJSON(input)
		twice := ExtractJSON(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
