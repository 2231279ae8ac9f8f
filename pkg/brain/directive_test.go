package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Directive
	}{
		{
			name: "plain text is a final answer verbatim",
			raw:  "Hola, ¿en qué puedo ayudarte?",
			want: Directive{Kind: KindFinal, Text: "Hola, ¿en qué puedo ayudarte?"},
		},
		{
			name: "final answer marker strips the scratchpad",
			raw:  "Thought: ya tengo todo lo necesario.\nFinal Answer: La cuenta fue creada.",
			want: Directive{Kind: KindFinal, Text: "La cuenta fue creada."},
		},
		{
			name: "action with input is a tool call",
			raw:  "Thought: necesito una herramienta.\nAction: run_system_audit\nAction Input: ahora",
			want: Directive{Kind: KindToolCall, Tool: "run_system_audit", Argument: "ahora"},
		},
		{
			name: "action input spans multiple lines",
			raw:  "Action: update_color_palette\nAction Input: {\n  \"primary\": \"#111111\",\n  \"accent\": \"#222222\"\n}",
			want: Directive{Kind: KindToolCall, Tool: "update_color_palette", Argument: "{\n  \"primary\": \"#111111\",\n  \"accent\": \"#222222\"\n}"},
		},
		{
			name: "action without input has an empty argument",
			raw:  "Action: get_campaign_status",
			want: Directive{Kind: KindToolCall, Tool: "get_campaign_status", Argument: ""},
		},
		{
			name: "backticked tool names are unwrapped",
			raw:  "Action: `view_team_structure`\nAction Input: todo",
			want: Directive{Kind: KindToolCall, Tool: "view_team_structure", Argument: "todo"},
		},
		{
			name: "empty action falls back to a final answer",
			raw:  "Action:   ",
			want: Directive{Kind: KindFinal, Text: "Action:"},
		},
		{
			name: "final answer wins over a preceding action",
			raw:  "Action: run_system_audit\nFinal Answer: todo en orden",
			want: Directive{Kind: KindFinal, Text: "todo en orden"},
		},
		{
			name: "whitespace is trimmed",
			raw:  "   Respuesta directa.  \n",
			want: Directive{Kind: KindFinal, Text: "Respuesta directa."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDirective(tt.raw))
		})
	}
}
