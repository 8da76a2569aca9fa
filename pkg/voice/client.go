// Package voice places outbound phone calls through a Vapi-compatible
// HTTP API.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Call is the provider's record of a placed call.
type Call struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// APIError represents a voice provider error response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("voice api: %s", e.Message)
}

// OfferParams describes a job offer call to a contractor. EnrichedIssueID
// is carried in the call metadata so the provider's webhook can reference
// the job when relaying the contractor's answer.
type OfferParams struct {
	PhoneNumber       string
	ContractorName    string
	JobTitle          string
	JobDescription    string
	IdentifiedProblem string
	Difficulty        string
	QuotedPrice       float64
	AppointmentWindow string
	EnrichedIssueID   string
}

// NotificationParams describes a claim notification call to a customer.
type NotificationParams struct {
	PhoneNumber    string
	CustomerName   string
	ContractorName string
	JobTitle       string
	AppointmentAt  string
	QuotedPrice    float64
}

// Config holds provider credentials. AssistantID and CallerNumberID come
// from the provider dashboard.
type Config struct {
	BaseURL        string
	APIKey         string
	AssistantID    string
	CallerNumberID string
}

// Client calls the voice provider over HTTP. Construct one per process
// and inject it where calls are placed.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PlaceOfferCall rings a contractor about an open job.
func (c *Client) PlaceOfferCall(ctx context.Context, p OfferParams) (Call, error) {
	firstMessage := fmt.Sprintf(
		"Hi %s! This is Sarah from ContractMe. We have a %s job opportunity that matches your skills. The estimated value is $%.2f and the customer needs it done %s. Do you have a moment to hear more details?",
		p.ContractorName, p.JobTitle, p.QuotedPrice, p.AppointmentWindow)

	req := callRequest{
		AssistantID:   c.cfg.AssistantID,
		PhoneNumberID: c.cfg.CallerNumberID,
		Customer: callCustomer{
			Number: NormalizePhoneNumber(p.PhoneNumber),
			Name:   p.ContractorName,
		},
		AssistantOverrides: &assistantOverrides{
			FirstMessage: firstMessage,
			VariableValues: map[string]any{
				"enrichedIssueId":   p.EnrichedIssueID,
				"jobTitle":          p.JobTitle,
				"jobDescription":    p.JobDescription,
				"identifiedProblem": p.IdentifiedProblem,
				"difficulty":        p.Difficulty,
				"quotedPrice":       p.QuotedPrice,
				"appointmentWindow": p.AppointmentWindow,
			},
		},
		Metadata: map[string]any{
			"kind":            "job-offer",
			"enrichedIssueId": p.EnrichedIssueID,
		},
	}
	return c.createCall(ctx, req)
}

// PlaceNotificationCall rings a customer to confirm a contractor was
// assigned.
func (c *Client) PlaceNotificationCall(ctx context.Context, p NotificationParams) (Call, error) {
	firstMessage := fmt.Sprintf(
		"Hi %s! This is Sarah from ContractMe calling with great news about your repair request. We've found a qualified contractor, %s, to help you.",
		p.CustomerName, p.ContractorName)
	if p.AppointmentAt != "" {
		firstMessage += fmt.Sprintf(" They're scheduled to visit you on %s with an estimated cost of $%.2f. Do you have a moment to confirm this appointment?", p.AppointmentAt, p.QuotedPrice)
	}

	req := callRequest{
		AssistantID:   c.cfg.AssistantID,
		PhoneNumberID: c.cfg.CallerNumberID,
		Customer: callCustomer{
			Number: NormalizePhoneNumber(p.PhoneNumber),
			Name:   p.CustomerName,
		},
		AssistantOverrides: &assistantOverrides{
			FirstMessage: firstMessage,
		},
		Metadata: map[string]any{
			"kind": "claim-notification",
		},
	}
	return c.createCall(ctx, req)
}

func (c *Client) createCall(ctx context.Context, body callRequest) (Call, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Call{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/call", bytes.NewReader(payload))
	if err != nil {
		return Call{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Call{}, fmt.Errorf("voice request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return Call{}, &APIError{Status: resp.StatusCode, Message: msg}
	}

	var call Call
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return Call{}, fmt.Errorf("voice decode: %w", err)
	}
	return call, nil
}

// NormalizePhoneNumber converts a local number to E.164, assuming the US
// country code when none is present. Spaces, dashes and parentheses are
// stripped.
func NormalizePhoneNumber(number string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(number))
	if cleaned == "" || strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	return "+1" + cleaned
}

type callCustomer struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

type assistantOverrides struct {
	FirstMessage   string         `json:"firstMessage,omitempty"`
	VariableValues map[string]any `json:"variableValues,omitempty"`
}

type callRequest struct {
	AssistantID        string              `json:"assistantId"`
	PhoneNumberID      string              `json:"phoneNumberId"`
	Customer           callCustomer        `json:"customer"`
	AssistantOverrides *assistantOverrides `json:"assistantOverrides,omitempty"`
	Metadata           map[string]any      `json:"metadata,omitempty"`
}
