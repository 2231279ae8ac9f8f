package brain

import "strings"

// DirectiveKind tags the parsed intent of a backend response.
type DirectiveKind int

const (
	// KindFinal is a direct natural-language answer.
	KindFinal DirectiveKind = iota
	// KindToolCall requests execution of one named tool.
	KindToolCall
)

// Directive is the structured form of a reasoning backend's raw output
// for one turn. It is transient: parsed, acted on, discarded.
type Directive struct {
	Kind     DirectiveKind
	Text     string // final answer when Kind == KindFinal
	Tool     string // tool name when Kind == KindToolCall
	Argument string // raw argument string when Kind == KindToolCall
}

const (
	actionPrefix      = "Action:"
	actionInputPrefix = "Action Input:"
	finalAnswerPrefix = "Final Answer:"
)

// ParseDirective interprets raw backend text. A response carrying an
// "Action:" line with a nonempty tool name is a tool call; its
// "Action Input:" spans the rest of the response so multi-line JSON
// arguments survive. An explicit "Final Answer:" marker strips the
// leading scratchpad. Anything else is a final answer verbatim.
func ParseDirective(raw string) Directive {
	if idx := strings.Index(raw, finalAnswerPrefix); idx >= 0 {
		return Directive{Kind: KindFinal, Text: strings.TrimSpace(raw[idx+len(finalAnswerPrefix):])}
	}

	actionIdx := strings.Index(raw, actionPrefix)
	if actionIdx < 0 {
		return Directive{Kind: KindFinal, Text: strings.TrimSpace(raw)}
	}

	rest := raw[actionIdx+len(actionPrefix):]
	var tool, arg string
	if inputIdx := strings.Index(rest, actionInputPrefix); inputIdx >= 0 {
		tool = strings.TrimSpace(rest[:inputIdx])
		arg = strings.TrimSpace(rest[inputIdx+len(actionInputPrefix):])
	} else {
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			tool = strings.TrimSpace(rest[:nl])
		} else {
			tool = strings.TrimSpace(rest)
		}
	}

	tool = strings.Trim(tool, "`")
	if tool == "" {
		return Directive{Kind: KindFinal, Text: strings.TrimSpace(raw)}
	}

	return Directive{Kind: KindToolCall, Tool: tool, Argument: arg}
}
