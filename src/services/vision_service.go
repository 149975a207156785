// backend/src/services/vision_service.go
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/username/tradelens/backend/src/config"
	"github.com/username/tradelens/backend/src/logger"
	"github.com/username/tradelens/backend/src/models"
	"google.golang.org/genai"
)

// statementPrompt instructs the model to transcribe, never to estimate.
// Loosening the wording degrades extraction precision noticeably.
const statementPrompt = `
Analyze this portfolio or account statement image and extract financial assets with EXACT precision.

CRITICAL: Extract ONLY the exact values shown in the image. Do NOT modify, estimate, or correct any numbers. Be as PRECISE as possible. Be thorough.

EXTRACTION RULES:
- Copy numbers EXACTLY as they appear in the image
- Do not round, estimate, or "fix" any values
- If a price shows as 150.25, use 150.25 (not 150.26 or 150.24)
- If shares show as 10.5, use 10.5 (not 10 or 11)
- If balance shows as 5000.00, use 5000.00 (not 5000 or 5000.01)

For each asset found, extract:
- Asset name/company name (exactly as shown in image)
- Ticker symbol (exactly as shown, if visible)
- Number of shares/units (exact number from image)
- Current price per share (exact dollar amount from image)
- Account balance (exact dollar amount from image)
- Interest rate/APY (exact percentage from image, converted to decimal; use 0.00 when not shown)

Determine asset type:
- isStock: true if it has a ticker symbol and shares (stocks, ETFs, mutual funds)
- isStock: false if it's cash, savings, checking, CD, or money market

Return the data as a JSON array with this structure:
[
  {
    "name": "Company Name",
    "isStock": true,
    "ticker": "SYMBOL",
    "shares": 123.45,
    "currentPrice": 150.25,
    "balance": 5000.00,
    "apy": 0.045
  }
]

IMPORTANT: Only extract what you can see clearly in the image. If you're unsure about any value, omit that asset entirely.
Only return valid JSON, no other text or explanations.
`

type visionServiceImpl struct {
	client    *genai.Client
	modelName string
}

// NewVisionService initializes the Gemini client used for statement image
// parsing. Returns an error when no API key is configured; the import
// endpoint is then disabled.
func NewVisionService(ctx context.Context) (VisionService, error) {
	if config.Cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing Gemini client: %w", err)
	}
	return &visionServiceImpl{client: client, modelName: config.Cfg.GeminiModel}, nil
}

// parsedAsset mirrors the JSON shape the model is asked to produce.
type parsedAsset struct {
	Name         string  `json:"name"`
	IsStock      bool    `json:"isStock"`
	Ticker       string  `json:"ticker"`
	Shares       float64 `json:"shares"`
	CurrentPrice float64 `json:"currentPrice"`
	Balance      float64 `json:"balance"`
	APY          float64 `json:"apy"`
}

func (s *visionServiceImpl) ParseStatement(ctx context.Context, imageBase64, mimeType string) ([]models.Asset, error) {
	imageBytes, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image data: %v", ErrImageParseFailed, err)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: statementPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageBytes}},
		},
	}}

	resp, err := s.client.Models.GenerateContent(ctx, s.modelName, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageParseFailed, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty model response", ErrImageParseFailed)
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	text = stripJSONFences(text)

	var parsed []parsedAsset
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		logger.L.Warn("Statement parse returned non-JSON output", "error", err)
		return nil, fmt.Errorf("%w: model output was not valid JSON", ErrImageParseFailed)
	}

	assets := validateParsedAssets(parsed)
	logger.L.Info("Parsed assets from statement image", "total", len(parsed), "valid", len(assets))
	return assets, nil
}

// stripJSONFences removes a surrounding markdown code fence if present.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// validateParsedAssets drops incomplete extractions and normalizes the
// field groups: stocks carry no balance/APY, cash accounts no shares/price.
// An APY outside [0,1] is reset to 0 rather than rejected.
func validateParsedAssets(parsed []parsedAsset) []models.Asset {
	assets := []models.Asset{}
	for _, p := range parsed {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if p.IsStock {
			if p.Shares <= 0 || p.CurrentPrice <= 0 {
				continue
			}
			assets = append(assets, models.Asset{
				Name:         p.Name,
				IsStock:      true,
				Ticker:       strings.ToUpper(strings.TrimSpace(p.Ticker)),
				Shares:       p.Shares,
				CurrentPrice: p.CurrentPrice,
			})
			continue
		}
		if p.Balance <= 0 {
			continue
		}
		apy := p.APY
		if apy < 0 || apy > 1 {
			apy = 0
		}
		assets = append(assets, models.Asset{
			Name:    p.Name,
			IsStock: false,
			Balance: p.Balance,
			APY:     apy,
		})
	}
	return assets
}
