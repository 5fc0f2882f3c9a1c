package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ih205R/creator-project-tracker-sub001/internal/llm"
	"github.com/Ih205R/creator-project-tracker-sub001/internal/models"
)

// Errors for assistant operations.
var (
	ErrAssistantNotConfigured = errors.New("assistant is not configured")
	ErrAssistantProvider      = errors.New("assistant provider call failed")
)

// assistantService implements AssistantService by prompting the LLM for
// structured JSON and unmarshalling it into typed results.
type assistantService struct {
	client *llm.Client
	logger *zap.Logger
}

// NewAssistantService creates a new AssistantService instance.
func NewAssistantService(client *llm.Client, logger *zap.Logger) AssistantService {
	return &assistantService{client: client, logger: logger}
}

func (s *assistantService) complete(ctx context.Context, system, user string, maxTokens int, out interface{}) error {
	raw, err := s.client.CompleteJSON(ctx, system, user, maxTokens)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return ErrAssistantNotConfigured
		}
		return fmt.Errorf("%w: %v", ErrAssistantProvider, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: unexpected response shape: %v", ErrAssistantProvider, err)
	}
	return nil
}

func (s *assistantService) AnalyzeContract(ctx context.Context, contractText string) (*ContractAnalysis, error) {
	system := `You review influencer brand contracts. Respond with a JSON object:
{"summary": string, "paymentTerms": string, "exclusivity": string, "redFlags": [string]}.
Keep the summary under 80 words. List every clause that is unusual or
unfavorable to the creator in redFlags.`

	var result ContractAnalysis
	if err := s.complete(ctx, system, contractText, 800, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *assistantService) RecommendPricing(ctx context.Context, req PricingRequest) (*PricingRecommendation, error) {
	system := `You price influencer sponsorships. Respond with a JSON object:
{"suggestedMin": integer cents, "suggestedMax": integer cents, "currency": "usd", "rationale": string}.`
	user := fmt.Sprintf("Platform: %s\nFollowers: %d\nDeliverable: %s\nNiche: %s\nEngagement: %s",
		req.Platform, req.Followers, req.Deliverable, req.Niche, req.EngagementPc)

	var result PricingRecommendation
	if err := s.complete(ctx, system, user, 400, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *assistantService) DealInsights(ctx context.Context, deals []*models.Deal) (*DealInsightsResult, error) {
	system := `You analyze a creator's brand-deal pipeline. Respond with a JSON object:
{"summary": string, "opportunities": [string], "risks": [string], "suggestedFollowUps": [string]}.`

	var b strings.Builder
	for _, d := range deals {
		fmt.Fprintf(&b, "- %s | status=%s | value=%d %s", d.BrandName, d.Status, d.Value, d.Currency)
		if d.DueDate != nil {
			fmt.Fprintf(&b, " | due=%s", d.DueDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		b.WriteString("(no deals yet)")
	}

	var result DealInsightsResult
	if err := s.complete(ctx, system, b.String(), 600, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *assistantService) DraftOutreachEmail(ctx context.Context, req OutreachRequest) (*EmailDraft, error) {
	system := `You write concise brand outreach emails for creators. Respond with a
JSON object: {"subject": string, "body": string}. No placeholders like [Name].`
	tone := req.Tone
	if tone == "" {
		tone = "professional and warm"
	}
	user := fmt.Sprintf("Brand: %s\nCreator: %s\nPitch: %s\nTone: %s",
		req.BrandName, req.CreatorName, req.Pitch, tone)

	var result EmailDraft
	if err := s.complete(ctx, system, user, 500, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *assistantService) DraftCaptions(ctx context.Context, topic, tone string, count int) (*CaptionDrafts, error) {
	if count <= 0 || count > 10 {
		count = 3
	}
	system := fmt.Sprintf(`You write social media captions. Respond with a JSON object:
{"captions": [string]} containing exactly %d captions.`, count)
	user := fmt.Sprintf("Topic: %s\nTone: %s", topic, tone)

	var result CaptionDrafts
	if err := s.complete(ctx, system, user, 500, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
