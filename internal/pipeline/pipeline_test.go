package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-audit-go/internal/config"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/rubric"
	"call-audit-go/internal/types"
)

// fixedRecognizer feeds a canned transcript into the pipeline.
type fixedRecognizer struct {
	segments []types.TranscriptSegment
}

func (r *fixedRecognizer) Transcribe(ctx context.Context, audioPath string) (types.TranscriptResult, error) {
	return types.TranscriptResult{Segments: r.segments, Language: "ru"}, nil
}

func threeSegments() []types.TranscriptSegment {
	// Roles are assigned downstream by diarization (agent/customer
	// alternating), so the recognizer leaves speakers empty.
	return []types.TranscriptSegment{
		{Start: 0.0, End: 2.0, Text: "Hello"},
		{Start: 2.0, End: 4.5, Text: "Hi there"},
		{Start: 4.5, End: 7.0, Text: "How can I help?"},
	}
}

func successOracle(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"empathy": 0.8, "compliance": 0.6, "structure": 0.9,
			"checklist": [{"id": "greeting", "passed": true, "score": 1, "max": 1, "reason": "greeted", "evidence": "Hello", "ts": "0.00-2.00"}],
			"highlights": []
		}`))
	}))
}

func newTestService(t *testing.T, gatewayURL string, segments []types.TranscriptSegment) (*Service, config.Config) {
	t.Helper()
	cfg := config.Config{
		LLMGatewayURL:  gatewayURL,
		LLMAPIKey:      "test-key",
		LLMModel:       "test-model",
		LLMTemperature: 0.1,
		ArtifactsDir:   t.TempDir(),
		MaxRuntime:     10 * time.Second,
	}
	log := logger.New()
	svc := NewService(cfg, log, &fixedRecognizer{segments: segments}, rubric.NewEvaluator(cfg, log))
	return svc, cfg
}

func stageAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "call.bin")
	require.NoError(t, os.WriteFile(path, []byte("audio bytes"), 0o644))
	return path
}

func TestRunSuccess(t *testing.T) {
	oracle := successOracle(t)
	defer oracle.Close()
	svc, cfg := newTestService(t, oracle.URL, threeSegments())

	res, err := svc.Run(context.Background(), stageAudio(t), "", true)
	require.NoError(t, err)

	assert.False(t, res.Degraded)
	assert.True(t, res.Consent)
	assert.InDelta(t, 0.8, res.Report.Scores.Empathy, 1e-9)
	require.Len(t, res.Report.Scores.Checklist, 1)
	assert.Equal(t, "greeting", res.Report.Scores.Checklist[0].ID)

	// Operational metrics populated from segment timing alone.
	assert.NotEmpty(t, res.Report.Operational.SpeechRateWpm)
	assert.GreaterOrEqual(t, res.Report.Operational.SilencePct, 0.0)

	// No partial marker on a clean run.
	assert.Nil(t, res.LLMRaw["partial"])

	baseDir := filepath.Join(cfg.ArtifactsDir, res.CallID)
	for _, name := range []string{"transcript.txt", "report.json", "report.html", "report.xlsx"} {
		_, err := os.Stat(filepath.Join(baseDir, name))
		assert.NoError(t, err, "missing artifact %s", name)
	}
	_, err = os.Stat(filepath.Join(baseDir, "input", "audio.wav"))
	assert.NoError(t, err)

	// The persisted report.json carries the same document as the payload.
	data, err := os.ReadFile(filepath.Join(baseDir, "report.json"))
	require.NoError(t, err)
	var persisted ResponsePayload
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, res.CallID, persisted.CallID)
	assert.InDelta(t, 0.8, persisted.Scores.Empathy, 1e-9)
	require.Len(t, persisted.Segments, 3)
	assert.Equal(t, "agent", persisted.Segments[0].Speaker)
	assert.Equal(t, "customer", persisted.Segments[1].Speaker)
	assert.Equal(t, "0.00-2.00", persisted.Segments[0].TS)

	// Artifact URLs derive from the served layout.
	assert.Equal(t, "/artifacts/"+res.CallID+"/report.json", res.Artifacts.JSON.URL)
	assert.Equal(t, "/artifacts/"+res.CallID+"/transcript.txt", res.Artifacts.Transcript.URL)
}

func TestRunExposesStagedAudioPath(t *testing.T) {
	oracle := successOracle(t)
	defer oracle.Close()
	svc, cfg := newTestService(t, oracle.URL, threeSegments())

	res, err := svc.Run(context.Background(), stageAudio(t), "", false)
	require.NoError(t, err)

	require.NotEmpty(t, res.Artifacts.Audio.Path)
	assert.Equal(t,
		filepath.Join(cfg.ArtifactsDir, res.CallID, "input", "audio.wav"),
		res.Artifacts.Audio.Path)
	_, err = os.Stat(res.Artifacts.Audio.Path)
	assert.NoError(t, err)

	// The staged recording stays out of the persisted artifact listing.
	data, err := os.ReadFile(filepath.Join(cfg.ArtifactsDir, res.CallID, "report.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	arts, ok := doc["artifacts"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, arts, "audio")
}

func TestRunDegradedOracleStillWritesArtifacts(t *testing.T) {
	oracle := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oracle down", http.StatusBadGateway)
	}))
	defer oracle.Close()
	svc, cfg := newTestService(t, oracle.URL, threeSegments())

	res, err := svc.Run(context.Background(), stageAudio(t), "", false)
	require.NoError(t, err)

	assert.True(t, res.Degraded)
	assert.Zero(t, res.Report.Scores.Empathy)
	assert.Zero(t, res.Report.Scores.Compliance)
	assert.Zero(t, res.Report.Scores.Structure)
	assert.Empty(t, res.Report.Scores.Checklist)
	assert.Equal(t, true, res.LLMRaw["partial"])
	assert.NotEmpty(t, res.LLMRaw["error"])

	// Operational metrics survive an oracle outage.
	assert.NotEmpty(t, res.Report.Operational.SpeechRateWpm)

	baseDir := filepath.Join(cfg.ArtifactsDir, res.CallID)
	for _, name := range []string{"report.json", "report.html"} {
		_, err := os.Stat(filepath.Join(baseDir, name))
		assert.NoError(t, err, "missing artifact %s", name)
	}
}

func TestRunEmptyTranscript(t *testing.T) {
	oracle := successOracle(t)
	defer oracle.Close()
	svc, cfg := newTestService(t, oracle.URL, nil)

	res, err := svc.Run(context.Background(), stageAudio(t), "", false)
	require.NoError(t, err)

	assert.Zero(t, res.Report.Operational.SilencePct)
	assert.Zero(t, res.Report.Operational.OverlapPct)
	assert.Empty(t, res.Report.Operational.SpeechRateWpm)
	assert.Empty(t, res.Lines)
	assert.Equal(t, "", res.Payload.Transcript.Text)

	_, err = os.Stat(filepath.Join(cfg.ArtifactsDir, res.CallID, "report.json"))
	assert.NoError(t, err)
}

func TestRunMintsDisjointCallDirectories(t *testing.T) {
	oracle := successOracle(t)
	defer oracle.Close()
	svc, cfg := newTestService(t, oracle.URL, threeSegments())
	audio := stageAudio(t)

	first, err := svc.Run(context.Background(), audio, "", false)
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), audio, "", false)
	require.NoError(t, err)

	assert.NotEqual(t, first.CallID, second.CallID)
	assert.NotEqual(t,
		filepath.Join(cfg.ArtifactsDir, first.CallID),
		filepath.Join(cfg.ArtifactsDir, second.CallID))
	for _, res := range []*PipelineResult{first, second} {
		_, err := os.Stat(filepath.Join(cfg.ArtifactsDir, res.CallID, "report.json"))
		assert.NoError(t, err)
	}
}

func TestRunMissingInputIsFatal(t *testing.T) {
	oracle := successOracle(t)
	defer oracle.Close()
	svc, _ := newTestService(t, oracle.URL, threeSegments())

	_, err := svc.Run(context.Background(), filepath.Join(t.TempDir(), "nope.wav"), "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunOutputDirOverride(t *testing.T) {
	oracle := successOracle(t)
	defer oracle.Close()
	svc, _ := newTestService(t, oracle.URL, threeSegments())

	override := t.TempDir()
	res, err := svc.Run(context.Background(), stageAudio(t), override, false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(override, res.CallID, "report.json"))
	assert.NoError(t, err)
}
