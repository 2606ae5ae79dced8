// ABOUTME: Request and response bodies for the document-chat backend REST API.
// ABOUTME: Includes math result formatting for the "<expr> = <result>" reply.

package api

import (
	"encoding/json"
	"strconv"
)

// QueryRequest is the JSON body for POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the JSON response from POST /query.
type QueryResponse struct {
	Query          string   `json:"query,omitempty"`
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources,omitempty"`
	ProcessingTime float64  `json:"processing_time,omitempty"`
}

// MathRequest is the JSON body for POST /math.
type MathRequest struct {
	Expression string `json:"expression"`
}

// MathResponse is the JSON response from POST /math.
// Result is kept raw because the backend may return a number, a string or
// anything else the evaluator produced.
type MathResponse struct {
	Expression string          `json:"expression"`
	Result     json.RawMessage `json:"result"`
}

// ResultString renders Result for display. Numbers use the shortest exact
// decimal form, strings are unquoted, other values stay compact JSON.
func (m *MathResponse) ResultString() string {
	if len(m.Result) == 0 {
		return ""
	}

	var f float64
	if err := json.Unmarshal(m.Result, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	var s string
	if err := json.Unmarshal(m.Result, &s); err == nil {
		return s
	}

	return string(m.Result)
}

// UploadResponse is the JSON response from POST /upload.
type UploadResponse struct {
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

// DocumentsResponse is the JSON response from GET /documents.
type DocumentsResponse struct {
	Documents []string `json:"documents"`
	Count     int      `json:"count"`
}

// AckResponse is the JSON response from the DELETE endpoints.
type AckResponse struct {
	Message string `json:"message"`
}

// errorResponse is the error body FastAPI-style backends return.
type errorResponse struct {
	Detail string `json:"detail"`
}
