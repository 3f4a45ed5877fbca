package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"nightlog/internal/model"
	"nightlog/internal/repository"
)

// GeminiClient calls Google's Gemini generateContent API to classify a dream.
//
// The model is asked for strict JSON: {mood, symbols, interpretation,
// detectedLanguage}. Everything it returns is sanitized before storage, so a
// misbehaving model can never put an unknown mood in the database.
type GeminiClient struct {
	apiKey     string
	httpClient *http.Client
}

const geminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

const analysisPrompt = `You are a dream analyst. Analyze the dream below and respond with ONLY a JSON object, no prose, in this exact shape:
{"mood": one of [happy, sad, anxious, peaceful, confused, excited, fearful, neutral], "symbols": up to 5 short lowercase noun phrases, "interpretation": 2-3 sentences, "detectedLanguage": ISO 639-1 code of the dream's language}

Dream:
`

// NewGeminiClient creates a Gemini client. An empty apiKey disables remote
// analysis; callers fall back to the keyword heuristic.
func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether remote analysis is configured.
func (c *GeminiClient) Enabled() bool {
	return c.apiKey != ""
}

// geminiRequest is the generateContent payload.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the subset of the generateContent response we read.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// analysisResult is the JSON shape the model is prompted to produce.
type analysisResult struct {
	Mood             string   `json:"mood"`
	Symbols          []string `json:"symbols"`
	Interpretation   string   `json:"interpretation"`
	DetectedLanguage string   `json:"detectedLanguage"`
}

// Analyze sends the dream content to Gemini and returns a sanitized analysis.
func (c *GeminiClient) Analyze(ctx context.Context, content string) (*model.Analysis, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: analysisPrompt + content}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", geminiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	text := stripJSONFences(geminiResp.Candidates[0].Content.Parts[0].Text)

	var result analysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("parse analysis json: %w", err)
	}

	return sanitizeAnalysis(result), nil
}

// stripJSONFences removes a markdown code fence the model sometimes wraps
// its JSON in.
func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// sanitizeAnalysis clamps model output to values we are willing to store.
func sanitizeAnalysis(result analysisResult) *model.Analysis {
	a := &model.Analysis{
		Mood:             strings.ToLower(strings.TrimSpace(result.Mood)),
		Symbols:          result.Symbols,
		Interpretation:   strings.TrimSpace(result.Interpretation),
		DetectedLanguage: strings.TrimSpace(result.DetectedLanguage),
		AnalyzedAt:       time.Now(),
	}
	if !model.IsValidMood(a.Mood) {
		a.Mood = model.MoodNeutral
	}
	if a.Symbols == nil {
		a.Symbols = []string{}
	}
	if len(a.Symbols) > 5 {
		a.Symbols = a.Symbols[:5]
	}
	if a.Interpretation == "" {
		a.Interpretation = "The dream reflects themes from your waking life worth reflecting on."
	}
	if a.DetectedLanguage == "" {
		a.DetectedLanguage = "en"
	}
	return a
}

// moodKeywords drives the offline fallback classifier. First mood whose
// keyword list matches wins; order encodes priority.
var moodKeywords = []struct {
	mood     string
	keywords []string
}{
	{model.MoodHappy, []string{"happy", "joy", "laugh", "smile", "celebrat"}},
	{model.MoodFearful, []string{"scared", "fear", "monster", "terrif", "horror"}},
	{model.MoodSad, []string{"sad", "cry", "lost", "grief", "alone"}},
	{model.MoodAnxious, []string{"anxious", "stress", "chase", "late", "panic"}},
	{model.MoodPeaceful, []string{"peace", "calm", "serene", "gentle", "float"}},
	{model.MoodExcited, []string{"fly", "adventure", "excit", "race", "discover"}},
}

// symbolKeywords maps content keywords to symbols for the fallback.
var symbolKeywords = []struct {
	symbol   string
	keywords []string
}{
	{"water", []string{"water", "ocean", "sea", "river", "rain"}},
	{"flying", []string{"fly", "flying", "soar", "wings"}},
	{"falling", []string{"fall", "falling", "drop"}},
	{"chase", []string{"chase", "chased", "running from", "pursu"}},
	{"animals", []string{"animal", "dog", "cat", "bird", "snake"}},
	{"family", []string{"family", "mother", "father", "sister", "brother"}},
	{"house", []string{"house", "home", "room", "door"}},
	{"death", []string{"death", "dying", "dead", "funeral"}},
}

// FallbackAnalysis classifies a dream with a keyword heuristic. Deterministic
// and offline, used when Gemini is unconfigured or fails.
func FallbackAnalysis(content string) *model.Analysis {
	lower := strings.ToLower(content)

	mood := model.MoodNeutral
	for _, mk := range moodKeywords {
		for _, kw := range mk.keywords {
			if strings.Contains(lower, kw) {
				mood = mk.mood
				break
			}
		}
		if mood != model.MoodNeutral {
			break
		}
	}

	var symbols []string
	for _, sk := range symbolKeywords {
		for _, kw := range sk.keywords {
			if strings.Contains(lower, kw) {
				symbols = append(symbols, sk.symbol)
				break
			}
		}
		if len(symbols) == 5 {
			break
		}
	}
	if len(symbols) == 0 {
		symbols = []string{"journey", "self-discovery"}
	}

	return &model.Analysis{
		Mood:             mood,
		Symbols:          symbols,
		Interpretation:   fmt.Sprintf("This dream carries a predominantly %s tone. The imagery suggests your mind is processing recent experiences; consider what felt most vivid and how it connects to your waking life.", mood),
		DetectedLanguage: "en",
		AnalyzedAt:       time.Now(),
	}
}

// AnalysisService attaches AI analysis to dreams.
type AnalysisService struct {
	repo   repository.DreamRepository
	gemini *GeminiClient
}

func NewAnalysisService(repo repository.DreamRepository, gemini *GeminiClient) *AnalysisService {
	return &AnalysisService{
		repo:   repo,
		gemini: gemini,
	}
}

// AnalyzeDream runs analysis on an owned dream and persists the result.
// Re-analysis overwrites the previous result and the dream's mood.
func (s *AnalysisService) AnalyzeDream(ctx context.Context, callerID, dreamID int64) (*model.Analysis, error) {
	dream, err := s.repo.GetByID(ctx, dreamID)
	if err != nil {
		return nil, err
	}
	if dream.UserID != callerID {
		return nil, model.ErrNotDreamOwner
	}

	analysis := s.AnalyzeText(ctx, dream.Content)

	if err := s.repo.SaveAnalysis(ctx, dreamID, analysis); err != nil {
		return nil, err
	}

	return analysis, nil
}

// AnalyzeText classifies free text without persisting anything. Gemini when
// configured, keyword fallback otherwise or on any remote failure.
func (s *AnalysisService) AnalyzeText(ctx context.Context, content string) *model.Analysis {
	if s.gemini != nil && s.gemini.Enabled() {
		analysis, err := s.gemini.Analyze(ctx, content)
		if err == nil {
			return analysis
		}
		log.Printf("[Analysis] Gemini failed, using fallback: %v", err)
	}
	return FallbackAnalysis(content)
}
