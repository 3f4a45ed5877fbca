package service

import (
	"context"
	"errors"
	"testing"

	"nightlog/internal/model"
)

// =============================================================================
// FALLBACK HEURISTIC
// =============================================================================

func TestFallbackAnalysis_Moods(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantMood string
	}{
		{"happy keywords", "We were laughing at a celebration full of joy", model.MoodHappy},
		{"fearful keywords", "A monster chased me and I was terrified", model.MoodFearful},
		{"sad keywords", "I was alone and started to cry", model.MoodSad},
		{"anxious keywords", "I was late for an exam and started to panic", model.MoodAnxious},
		{"peaceful keywords", "A calm, serene lake at dawn", model.MoodPeaceful},
		{"excited keywords", "An adventure racing through a new city", model.MoodExcited},
		{"no keywords", "Ordinary office with grey walls", model.MoodNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := FallbackAnalysis(tt.content)
			if a.Mood != tt.wantMood {
				t.Errorf("mood = %q, want %q", a.Mood, tt.wantMood)
			}
		})
	}
}

func TestFallbackAnalysis_Deterministic(t *testing.T) {
	content := "I was flying over the ocean with my family"

	first := FallbackAnalysis(content)
	second := FallbackAnalysis(content)

	if first.Mood != second.Mood {
		t.Errorf("mood differs across runs: %q vs %q", first.Mood, second.Mood)
	}
	if len(first.Symbols) != len(second.Symbols) {
		t.Fatalf("symbol count differs across runs")
	}
	for i := range first.Symbols {
		if first.Symbols[i] != second.Symbols[i] {
			t.Errorf("symbols[%d] differs: %q vs %q", i, first.Symbols[i], second.Symbols[i])
		}
	}
}

func TestFallbackAnalysis_Symbols(t *testing.T) {
	a := FallbackAnalysis("I was flying over the ocean when a snake appeared near my house")

	want := map[string]bool{"water": true, "flying": true, "animals": true, "house": true}
	for _, s := range a.Symbols {
		if !want[s] {
			t.Errorf("unexpected symbol %q", s)
		}
	}
	if len(a.Symbols) != len(want) {
		t.Errorf("symbols = %v, want %d entries", a.Symbols, len(want))
	}
}

func TestFallbackAnalysis_DefaultSymbols(t *testing.T) {
	a := FallbackAnalysis("Nothing recognizable happened")

	if len(a.Symbols) != 2 || a.Symbols[0] != "journey" || a.Symbols[1] != "self-discovery" {
		t.Errorf("symbols = %v, want default [journey self-discovery]", a.Symbols)
	}
	if a.Interpretation == "" {
		t.Error("interpretation should never be empty")
	}
	if a.AnalyzedAt.IsZero() {
		t.Error("analyzedAt should be stamped")
	}
}

// =============================================================================
// SANITIZATION OF MODEL OUTPUT
// =============================================================================

func TestSanitizeAnalysis_ClampsUnknownMood(t *testing.T) {
	a := sanitizeAnalysis(analysisResult{
		Mood:           "melancholic-with-a-hint-of-dread",
		Symbols:        []string{"rain"},
		Interpretation: "Something.",
	})

	if a.Mood != model.MoodNeutral {
		t.Errorf("mood = %q, want %q for an out-of-enum value", a.Mood, model.MoodNeutral)
	}
}

func TestSanitizeAnalysis_NormalizesCase(t *testing.T) {
	a := sanitizeAnalysis(analysisResult{Mood: " Peaceful "})
	if a.Mood != model.MoodPeaceful {
		t.Errorf("mood = %q, want %q", a.Mood, model.MoodPeaceful)
	}
}

func TestSanitizeAnalysis_Defaults(t *testing.T) {
	a := sanitizeAnalysis(analysisResult{Mood: "happy"})

	if a.Symbols == nil {
		t.Error("symbols should never be nil")
	}
	if a.Interpretation == "" {
		t.Error("interpretation should get a default")
	}
	if a.DetectedLanguage != "en" {
		t.Errorf("detectedLanguage = %q, want en default", a.DetectedLanguage)
	}
}

func TestSanitizeAnalysis_TruncatesSymbols(t *testing.T) {
	a := sanitizeAnalysis(analysisResult{
		Mood:    "happy",
		Symbols: []string{"a", "b", "c", "d", "e", "f", "g"},
	})
	if len(a.Symbols) != 5 {
		t.Errorf("symbols = %d entries, want capped at 5", len(a.Symbols))
	}
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"mood":"happy"}`, `{"mood":"happy"}`},
		{"json fence", "```json\n{\"mood\":\"happy\"}\n```", `{"mood":"happy"}`},
		{"plain fence", "```\n{\"mood\":\"happy\"}\n```", `{"mood":"happy"}`},
		{"surrounding whitespace", "  {\"mood\":\"happy\"}\n", `{"mood":"happy"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFences(tt.in); got != tt.want {
				t.Errorf("stripJSONFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// ANALYZE DREAM
// =============================================================================

func TestAnalysisService_AnalyzeDream_PersistsResult(t *testing.T) {
	var savedID int64
	var saved *model.Analysis
	mockRepo := &mockDreamRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
			return activeDream(id, 1), nil
		},
		saveAnalysisFn: func(ctx context.Context, id int64, analysis *model.Analysis) error {
			savedID = id
			saved = analysis
			return nil
		},
	}
	// No API key configured: the keyword fallback runs.
	svc := NewAnalysisService(mockRepo, NewGeminiClient(""))

	analysis, err := svc.AnalyzeDream(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if savedID != 10 {
		t.Errorf("saved dream id = %d, want 10", savedID)
	}
	if saved != analysis {
		t.Error("returned analysis should be the persisted one")
	}
	if !model.IsValidMood(analysis.Mood) {
		t.Errorf("stored mood %q must be in the enum", analysis.Mood)
	}
}

func TestAnalysisService_AnalyzeDream_Ownership(t *testing.T) {
	mockRepo := &mockDreamRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
			return activeDream(id, 1), nil
		},
	}
	svc := NewAnalysisService(mockRepo, NewGeminiClient(""))

	_, err := svc.AnalyzeDream(context.Background(), 2, 10)
	if !errors.Is(err, model.ErrNotDreamOwner) {
		t.Errorf("error = %v, want %v", err, model.ErrNotDreamOwner)
	}
	if mockRepo.saveAnalysisCalls != 0 {
		t.Error("nothing should be persisted for a non-owner")
	}
}

func TestAnalysisService_AnalyzeDream_TrashedDreamStillAnalyzable(t *testing.T) {
	mockRepo := &mockDreamRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
			return trashedDream(id, 1), nil
		},
	}
	svc := NewAnalysisService(mockRepo, NewGeminiClient(""))

	if _, err := svc.AnalyzeDream(context.Background(), 1, 10); err != nil {
		t.Fatalf("analysis should work on trashed dreams, got: %v", err)
	}
}
