package proc

import (
	"bufio"
	"encoding/json"
	"strings"
)

// ParsedOutput is the distilled result of one finished agent turn.
type ParsedOutput struct {
	// Text is the agent's final response text.
	Text string
	// AgentSessionID is the session id the agent reported, enabling resume
	// on the next turn. Empty when the agent did not report one.
	AgentSessionID string
	// TokensUsed and Cost come from usage accounting in the output, when
	// the agent reports them.
	TokensUsed int
	Cost       float64
}

// OutputParser turns a finished subprocess's raw buffered output into a
// ParsedOutput. The raw grammar is agent-specific; the orchestrator only
// depends on this contract.
type OutputParser interface {
	Parse(raw string) ParsedOutput
}

// StreamJSONParser parses newline-delimited JSON event output of the shape
// the claude-code and codex CLIs emit: each line an object whose "type"
// field selects the payload. Malformed lines are skipped; when no result
// event exists the trailing non-JSON text is used verbatim.
type StreamJSONParser struct{}

type streamLine struct {
	Type      string  `json:"type"`
	Result    string  `json:"result"`
	SessionID string  `json:"session_id"`
	TotalCost float64 `json:"total_cost_usd"`
	Usage     struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Parse scans raw line by line, collecting the last result event's text,
// the reported session id, and usage counters.
func (StreamJSONParser) Parse(raw string) ParsedOutput {
	var out ParsedOutput
	var plain []string

	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "{") {
			plain = append(plain, line)
			continue
		}

		var ev streamLine
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			plain = append(plain, line)
			continue
		}
		if ev.SessionID != "" {
			out.AgentSessionID = ev.SessionID
		}
		if ev.Type == "result" {
			out.Text = ev.Result
			out.TokensUsed += ev.Usage.InputTokens + ev.Usage.OutputTokens
			if ev.TotalCost > 0 {
				out.Cost = ev.TotalCost
			}
		}
	}

	if out.Text == "" {
		out.Text = strings.TrimSpace(strings.Join(plain, "\n"))
	}
	return out
}

// Verify StreamJSONParser implements OutputParser at compile time.
var _ OutputParser = StreamJSONParser{}
