package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plantuml fence",
			in:   "```plantuml\n@startuml\nA -> B\n@enduml\n```",
			want: "@startuml\nA -> B\n@enduml",
		},
		{
			name: "bare fence",
			in:   "```\n@startuml\n@enduml\n```",
			want: "@startuml\n@enduml",
		},
		{
			name: "no fence",
			in:   "A sequence diagram shows message ordering.",
			want: "A sequence diagram shows message ordering.",
		},
		{
			name: "fence with surrounding prose is left alone",
			in:   "Here you go:\n```plantuml\n@startuml\n@enduml\n```",
			want: "Here you go:\n```plantuml\n@startuml\n@enduml\n```",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFence(tc.in))
		})
	}
}
