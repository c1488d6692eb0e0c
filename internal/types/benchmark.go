// Package types provides type definitions for structured data used throughout the respcompare system.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BenchmarkResult is one A/B benchmark record: a prompt and the responses
// produced by the baseline (Mode A) and enhanced (Mode B) systems.
type BenchmarkResult struct {
	ID            uuid.UUID `json:"id"`
	TestName      string    `json:"test_name"`
	Prompt        string    `json:"prompt,omitempty"`
	ModeAModel    string    `json:"mode_a_model,omitempty"`
	ModeBModel    string    `json:"mode_b_model,omitempty"`
	ModeAResponse string    `json:"mode_a_response"`
	ModeBResponse string    `json:"mode_b_response"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateBenchmarkResultRequest is the request body for storing a benchmark record.
type CreateBenchmarkResultRequest struct {
	TestName      string `json:"test_name" validate:"required,max=200"`
	Prompt        string `json:"prompt,omitempty"`
	ModeAModel    string `json:"mode_a_model,omitempty" validate:"max=200"`
	ModeBModel    string `json:"mode_b_model,omitempty" validate:"max=200"`
	ModeAResponse string `json:"mode_a_response"`
	ModeBResponse string `json:"mode_b_response"`
}

// CompareRequest is the request body for an ad-hoc comparison of two texts.
type CompareRequest struct {
	TextA string `json:"text_a"`
	TextB string `json:"text_b"`
	Mode  string `json:"mode,omitempty" validate:"omitempty,oneof=greedy optimal"`
}

// Validate validates the CreateBenchmarkResultRequest using the validator.
func (r *CreateBenchmarkResultRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CompareRequest using the validator.
func (r *CompareRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ToResult builds a BenchmarkResult from the request. ID and CreatedAt are
// left for the store to assign.
func (r *CreateBenchmarkResultRequest) ToResult() *BenchmarkResult {
	return &BenchmarkResult{
		TestName:      r.TestName,
		Prompt:        r.Prompt,
		ModeAModel:    r.ModeAModel,
		ModeBModel:    r.ModeBModel,
		ModeAResponse: r.ModeAResponse,
		ModeBResponse: r.ModeBResponse,
	}
}
