// Package wire defines the JSON bodies exchanged with clients.
package wire

import "github.com/baditaflorin/go_comment_classifier/internal/core/domain"

// PredictionBody is the per-label result; Predicted is 0 or 1.
type PredictionBody struct {
	Predicted  int     `json:"predicted"`
	Confidence float64 `json:"confidence"`
}

// ClassifyResponse is the body of a successful classification.
type ClassifyResponse struct {
	Category       string                    `json:"category"`
	Confidence     float64                   `json:"confidence"`
	AllPredictions map[string]PredictionBody `json:"all_predictions"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status          string   `json:"status"`
	ModelsLoaded    bool     `json:"models_loaded"`
	AvailableLabels []string `json:"available_labels"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewClassifyResponse converts a domain response to its wire form.
func NewClassifyResponse(resp domain.Response) ClassifyResponse {
	out := ClassifyResponse{
		Category:       resp.Category,
		Confidence:     resp.Confidence,
		AllPredictions: make(map[string]PredictionBody, len(resp.AllPredictions)),
	}
	for label, p := range resp.AllPredictions {
		body := PredictionBody{Confidence: p.Confidence}
		if p.Predicted {
			body.Predicted = 1
		}
		out.AllPredictions[label] = body
	}
	return out
}

// NewHealthResponse reports readiness and the loaded labels.
func NewHealthResponse(ready bool, labels []string) HealthResponse {
	if labels == nil {
		labels = []string{}
	}
	return HealthResponse{
		Status:          "healthy",
		ModelsLoaded:    ready,
		AvailableLabels: labels,
	}
}
