package rubric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"call-audit-go/internal/config"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/types"
)

const systemInstruction = `You are a strict call quality auditor. The input is a dialogue transcript with lines "[start-end] speaker: text".
Score the conversation on empathy, compliance and structure, each in [0,1].
For every checklist item return a short reason and an exact quote with its timecode.
Never invent quotes; use only text present in the transcript.
Return ONLY a JSON object with keys: empathy, compliance, structure, checklist, highlights.
checklist items: {id, passed, score, max, reason, evidence, ts}. highlights items: {type, quote, ts}.`

// requiredFields must all be present in the oracle response; anything less
// is treated as an oracle failure, not coerced.
var requiredFields = []string{"empathy", "compliance", "structure", "checklist"}

// Evaluator sends formatted transcripts to the rubric oracle gateway and
// normalizes its structured responses.
type Evaluator struct {
	cfg    config.Config
	log    *logger.Logger
	client *http.Client
}

func NewEvaluator(cfg config.Config, log *logger.Logger) *Evaluator {
	// The client carries no timeout of its own: the caller's context
	// deadline (the configured runtime bound) is the only cap on the
	// oracle call.
	return &Evaluator{
		cfg:    cfg,
		log:    log,
		client: &http.Client{},
	}
}

// Evaluate performs exactly one oracle call for the transcript. Every
// failure mode (transport, status, parse, schema, timeout) takes the
// degraded path; retries are the caller's concern, not performed here.
func (e *Evaluator) Evaluate(ctx context.Context, transcript string) Outcome {
	log := e.log.WithField("component", "rubric")

	if e.cfg.UseMockLLM {
		log.Info("mock LLM mode ON - returning deterministic rubric result")
		return mockOutcome()
	}
	if e.cfg.LLMGatewayURL == "" || e.cfg.LLMAPIKey == "" {
		return DegradedOutcome("llm gateway not configured")
	}

	prompt := "Transcript below, lines carry timecodes and speaker roles.\nReturn strictly JSON per the schema.\n---\n" + transcript
	reqBody := map[string]any{
		"model": e.cfg.LLMModel,
		"messages": []map[string]string{
			{"role": "system", "content": systemInstruction},
			{"role": "user", "content": prompt},
		},
		"temperature": e.cfg.LLMTemperature,
	}
	data, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.LLMGatewayURL, bytes.NewReader(data))
	if err != nil {
		return DegradedOutcome(fmt.Sprintf("build llm request: %v", err))
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.LLMAPIKey)
	req.Header.Set("Content-Type", "application/json")

	log.WithField("model", e.cfg.LLMModel).Info("llm request")
	resp, err := e.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("llm request failed")
		return DegradedOutcome(fmt.Sprintf("llm request failed: %v", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return DegradedOutcome(fmt.Sprintf("llm gateway status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	// OpenAI-style gateways nest the JSON in choices[0].message.content;
	// others return it at the top level.
	doc := extractContentFromChoices(body)
	if doc == "" {
		doc = extractJSON(string(body))
	}
	if doc == "" {
		return DegradedOutcome("no JSON found in llm output")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return DegradedOutcome(fmt.Sprintf("llm response decode error: %v", err))
	}
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			return DegradedOutcome(fmt.Sprintf("llm response missing required field %q", field))
		}
	}

	result := parseResult(raw)
	log.WithField("checklist_items", len(result.Checklist)).Info("llm response parsed")
	return Outcome{Result: result, Raw: raw}
}

// parseResult coerces the untrusted oracle payload into the result shape:
// missing numbers become 0, missing sequences become empty.
func parseResult(raw map[string]any) types.RubricResult {
	res := types.RubricResult{
		Empathy:    asFloat(raw["empathy"]),
		Compliance: asFloat(raw["compliance"]),
		Structure:  asFloat(raw["structure"]),
		Checklist:  []types.ChecklistItem{},
		Highlights: []types.Highlight{},
	}
	if items, ok := raw["checklist"].([]any); ok {
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			res.Checklist = append(res.Checklist, types.ChecklistItem{
				ID:       asString(m["id"]),
				Passed:   asBool(m["passed"]),
				Score:    asFloat(m["score"]),
				Max:      asFloat(m["max"]),
				Reason:   asString(m["reason"]),
				Evidence: asString(m["evidence"]),
				TS:       asString(m["ts"]),
			})
		}
	}
	if items, ok := raw["highlights"].([]any); ok {
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			res.Highlights = append(res.Highlights, types.Highlight{
				Type:  asString(m["type"]),
				Quote: asString(m["quote"]),
				TS:    asString(m["ts"]),
			})
		}
	}
	return res
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func mockOutcome() Outcome {
	result := types.RubricResult{
		Empathy:    0.74,
		Compliance: 0.61,
		Structure:  0.88,
		Checklist: []types.ChecklistItem{
			{ID: "greeting", Passed: true, Score: 1, Max: 1, Reason: "agent opened with a greeting", Evidence: "Hello", TS: "0.00-2.00"},
			{ID: "needs_discovery", Passed: false, Score: 0, Max: 1, Reason: "no clarifying questions asked", Evidence: "", TS: ""},
		},
		Highlights: []types.Highlight{
			{Type: "positive", Quote: "How can I help?", TS: "4.50-7.00"},
		},
	}
	raw := map[string]any{}
	if data, err := json.Marshal(result); err == nil {
		_ = json.Unmarshal(data, &raw)
	}
	return Outcome{Result: result, Raw: raw}
}
