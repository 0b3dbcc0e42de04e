package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FactChecker routes classified input through the matching prompt template,
// dispatches it to the reasoning backend, and recovers a structured verdict
// from the response.
type FactChecker struct {
	reasoner Reasoner
	settings *Settings
	store    *ResultStore
}

// NewFactChecker creates a fact checker over the given backend and store.
func NewFactChecker(reasoner Reasoner, settings *Settings, store *ResultStore) *FactChecker {
	return &FactChecker{
		reasoner: reasoner,
		settings: settings,
		store:    store,
	}
}

func (fc *FactChecker) opts() GenerateOptions {
	return GenerateOptions{
		Model:       fc.settings.Agents.Checker.Model,
		MaxTokens:   fc.settings.Agents.Checker.MaxTokens,
		Temperature: fc.settings.Agents.Checker.Temperature,
	}
}

// Check classifies the input, dispatches one blocking backend call, and
// parses the output. Backend failures become a synthetic error string that
// flows through the parser, so the caller always gets a verdict-shaped
// record.
func (fc *FactChecker) Check(input string) *Verdict {
	intent := DetectIntent(input)
	debugLog("detected intent %q for input of %d bytes", intent, len(input))

	var raw string
	var err error

	switch intent {
	case IntentImage:
		mimeType, payload, decodeErr := decodeImageDataURI(input)
		if decodeErr != nil {
			return &Verdict{
				ID:          uuid.NewString(),
				SourceType:  "image",
				Error:       fmt.Sprintf("Failed to process image: %v", decodeErr),
				RawResponse: input,
				CheckedAt:   time.Now().Unix(),
			}
		}
		log.Printf("→ Checking image (%s, %d bytes)", mimeType, len(payload))
		raw, err = fc.reasoner.GenerateWithImage(context.Background(), imagePrompt(), payload, mimeType, fc.opts())
	default:
		log.Printf("→ Checking %s input", intent)
		raw, err = fc.reasoner.Generate(context.Background(), buildPrompt(intent, input), fc.opts())
	}

	if err != nil {
		raw = fmt.Sprintf("Failed to fetch or parse API response: %v", err)
	}

	verdict := ParseVerdict(raw)
	verdict.ID = uuid.NewString()
	verdict.CheckedAt = time.Now().Unix()
	if intent == IntentImage {
		verdict.SourceType = "image"
	}

	if verdict.Error != "" {
		log.Printf("✗ Check degraded: %s", verdict.Error)
	} else {
		log.Printf("✓ Check completed")
	}
	return &verdict
}

// CheckAndSave runs Check and appends the verdict to the result store. A
// store failure is logged, never fatal.
func (fc *FactChecker) CheckAndSave(input string) *Verdict {
	verdict := fc.Check(input)
	if err := fc.store.Append(verdict); err != nil {
		log.Printf("✗ Saving result: %v", err)
	}
	return verdict
}

// decodeImageDataURI splits an embedded data:image/... URI into its declared
// media type and decoded payload.
func decodeImageDataURI(input string) (mimeType string, payload []byte, err error) {
	header, data, found := strings.Cut(input, ",")
	if !found {
		return "", nil, fmt.Errorf("missing data separator")
	}

	// header looks like data:image/png;base64
	meta := strings.TrimPrefix(header, "data:")
	mimeType, _, _ = strings.Cut(meta, ";")
	if mimeType == "" {
		return "", nil, fmt.Errorf("missing media type")
	}

	payload, err = base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", nil, fmt.Errorf("decoding base64 payload: %w", err)
	}
	return mimeType, payload, nil
}
