package proc

import "testing"

func TestStreamJSONParserResult(t *testing.T) {
	raw := `{"type":"system","session_id":"sess-abc"}
{"type":"assistant","message":"thinking"}
{"type":"result","result":"the final answer","session_id":"sess-abc","total_cost_usd":0.0421,"usage":{"input_tokens":120,"output_tokens":48}}
`
	out := StreamJSONParser{}.Parse(raw)

	if out.Text != "the final answer" {
		t.Errorf("Text = %q", out.Text)
	}
	if out.AgentSessionID != "sess-abc" {
		t.Errorf("AgentSessionID = %q", out.AgentSessionID)
	}
	if out.TokensUsed != 168 {
		t.Errorf("TokensUsed = %d, want 168", out.TokensUsed)
	}
	if out.Cost != 0.0421 {
		t.Errorf("Cost = %v", out.Cost)
	}
}

func TestStreamJSONParserPlainFallback(t *testing.T) {
	raw := "just plain text\nacross two lines\n"
	out := StreamJSONParser{}.Parse(raw)

	if out.Text != "just plain text\nacross two lines" {
		t.Errorf("Text = %q", out.Text)
	}
	if out.AgentSessionID != "" {
		t.Errorf("AgentSessionID = %q, want empty", out.AgentSessionID)
	}
}

func TestStreamJSONParserMalformedLinesSkipped(t *testing.T) {
	raw := `{"type":"result","result":"ok","session_id":"s1"}
{not json at all
`
	out := StreamJSONParser{}.Parse(raw)
	if out.Text != "ok" {
		t.Errorf("Text = %q, want %q", out.Text, "ok")
	}
}

func TestStreamJSONParserEmpty(t *testing.T) {
	out := StreamJSONParser{}.Parse("")
	if out.Text != "" || out.AgentSessionID != "" {
		t.Errorf("empty input should parse to zero value, got %+v", out)
	}
}
