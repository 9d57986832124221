package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/seenimoa/stockcast/internal/datasource"
)

// DefaultHFModel is the binary sentiment model used by default.
const DefaultHFModel = "distilbert/distilbert-base-uncased-finetuned-sst-2-english"

// maxHFChars bounds the request size; the model truncates at 512 tokens.
const maxHFChars = 2000

// ErrUnexpectedLabels is returned when the model answers without
// POSITIVE/NEGATIVE labels.
var ErrUnexpectedLabels = errors.New("unexpected classifier labels")

// HuggingFace classifies text with a hosted text-classification model.
type HuggingFace struct {
	endpoint string
	token    string
}

// NewHuggingFace creates a classifier for model under baseURL.
func NewHuggingFace(baseURL, model, token string) *HuggingFace {
	if model == "" {
		model = DefaultHFModel
	}
	return &HuggingFace{
		endpoint: strings.TrimRight(baseURL, "/") + "/" + model,
		token:    token,
	}
}

// Name returns the classifier name.
func (h *HuggingFace) Name() string { return "huggingface" }

type hfLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Score implements Classifier as P(positive) - P(negative).
func (h *HuggingFace) Score(ctx context.Context, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	text = truncateUTF8(text, maxHFChars)

	payload := map[string]any{
		"inputs":  text,
		"options": map[string]bool{"wait_for_model": true},
	}
	headers := map[string]string{}
	if h.token != "" {
		headers["Authorization"] = "Bearer " + h.token
	}

	var raw json.RawMessage
	if err := datasource.PostJSON(ctx, h.endpoint, payload, headers, &raw); err != nil {
		return 0, fmt.Errorf("huggingface classify: %w", err)
	}
	labels, err := decodeLabels(raw)
	if err != nil {
		return 0, err
	}
	return signedScore(labels)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// decodeLabels accepts both the nested [[...]] and flat [...] shapes the
// inference API returns.
func decodeLabels(raw json.RawMessage) ([]hfLabel, error) {
	var nested [][]hfLabel
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}
	var flat []hfLabel
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error != "" {
		return nil, fmt.Errorf("huggingface: %s", apiErr.Error)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnexpectedLabels, string(raw))
}

func signedScore(labels []hfLabel) (float64, error) {
	var pos, neg float64
	found := false
	for _, l := range labels {
		switch strings.ToUpper(l.Label) {
		case "POSITIVE", "LABEL_1":
			pos = l.Score
			found = true
		case "NEGATIVE", "LABEL_0":
			neg = l.Score
			found = true
		}
	}
	if !found {
		return 0, ErrUnexpectedLabels
	}
	return clamp(pos - neg), nil
}
