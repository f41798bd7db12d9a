package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/openai/openai-go"
	"github.com/outlivehq/mindmitra/internal/ai/client"
	"github.com/outlivehq/mindmitra/internal/database/types/enum"
	"github.com/outlivehq/mindmitra/internal/setup/config"
	"github.com/outlivehq/mindmitra/pkg/utils"
	"go.uber.org/zap"
)

// Concern types reported by the safety classifier.
const (
	ConcernSuicide  = "suicide"
	ConcernAbuse    = "abuse"
	ConcernCrisis   = "crisis"
	ConcernDistress = "distress"
	ConcernNone     = "none"
)

// SafetyAnalysis is the structured output requested from the model.
type SafetyAnalysis struct {
	IsConcerning   bool    `json:"is_concerning"   jsonschema:"required,description=Whether the message indicates a serious safety concern"`
	ConcernType    string  `json:"concern_type"    jsonschema:"required,enum=suicide,enum=abuse,enum=crisis,enum=distress,enum=none,description=Type of concern detected"`
	Confidence     float64 `json:"confidence"      jsonschema:"required,minimum=0,maximum=1,description=Confidence score for the assessment"`
	Reasoning      string  `json:"reasoning"       jsonschema:"required,description=Brief explanation of the assessment"`
	Severity       string  `json:"severity"        jsonschema:"required,enum=low,enum=medium,enum=high,enum=critical,description=Severity tier"`
	ResponseNeeded bool    `json:"response_needed" jsonschema:"required,description=Whether an intervention response is needed"`
}

// SafetyAnalysisSchema is the JSON schema for the classifier response.
var SafetyAnalysisSchema = utils.GenerateSchema[SafetyAnalysis]()

// Classification is the classifier's decision for one message.
type Classification struct {
	Concerning   bool
	ConcernType  string
	Category     enum.CrisisCategory
	Analysis     *SafetyAnalysis
	FromFallback bool
}

// SafetyClassifier scores messages against concern categories with a language
// model, degrading to a keyword check when the model call or its output fails.
type SafetyClassifier struct {
	chat   client.ChatCompletions
	model  string
	cfg    config.Detection
	logger *zap.Logger
}

// NewSafetyClassifier creates a safety classifier.
func NewSafetyClassifier(
	chat client.ChatCompletions, model string, cfg config.Detection, logger *zap.Logger,
) *SafetyClassifier {
	return &SafetyClassifier{
		chat:   chat,
		model:  model,
		cfg:    cfg,
		logger: logger.Named("classifier"),
	}
}

// Classify analyzes a message for concerning content. It never fails: any
// call or parse problem degrades to the keyword fallback so the caller always
// gets a usable decision.
func (s *SafetyClassifier) Classify(ctx context.Context, text string) *Classification {
	analysis, err := s.analyze(ctx, text)
	if err != nil {
		s.logger.Warn("Safety analysis failed, using keyword fallback", zap.Error(err))
		return s.keywordFallback(text)
	}

	if !s.meetsThreshold(analysis) {
		return &Classification{
			Concerning:  false,
			ConcernType: ConcernNone,
			Category:    enum.CategoryNone,
			Analysis:    analysis,
		}
	}

	return &Classification{
		Concerning:  true,
		ConcernType: analysis.ConcernType,
		Category:    concernCategory(analysis.ConcernType),
		Analysis:    analysis,
	}
}

// analyze makes the structured-output model call.
func (s *SafetyClassifier) analyze(ctx context.Context, text string) (*SafetyAnalysis, error) {
	resp, err := s.chat.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(ClassifierSystemPrompt),
			openai.UserMessage(fmt.Sprintf(ClassifierPrompt, text)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "safetyAnalysis",
					Description: openai.String("Safety analysis of a user message"),
					Schema:      SafetyAnalysisSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
		Model:               s.model,
		Temperature:         openai.Float(0.1),
		MaxCompletionTokens: openai.Int(200),
	})
	if err != nil {
		return nil, fmt.Errorf("safety analysis request failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: no response from model", utils.ErrModelResponse)
	}

	var analysis SafetyAnalysis
	if err := sonic.Unmarshal([]byte(resp.Choices[0].Message.Content), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrModelResponse, err)
	}

	if analysis.ConcernType == "" || analysis.Severity == "" {
		return nil, fmt.Errorf("%w: missing required fields", utils.ErrModelResponse)
	}

	return &analysis, nil
}

// meetsThreshold applies the decision rule. Abuse disclosures use an
// inclusive, lower threshold; all other concern types require strictly
// greater confidence.
func (s *SafetyClassifier) meetsThreshold(analysis *SafetyAnalysis) bool {
	if !analysis.IsConcerning || !analysis.ResponseNeeded {
		return false
	}

	if analysis.ConcernType == ConcernAbuse {
		return analysis.Confidence >= s.cfg.AbuseThreshold
	}

	return analysis.Confidence > s.cfg.DefaultThreshold
}

// fallbackPatterns is the reduced keyword set scanned when the model path
// fails. Only unambiguous phrases appear here.
var fallbackPatterns = []struct {
	concernType string
	keywords    []string
}{
	{ConcernSuicide, []string{"suicide", "kill myself", "want to die", "end my life", "better off dead"}},
	{ConcernAbuse, []string{"hit me", "beat me", "physically hurt me", "rape", "molest", "harass", "he hurt me", "she hurt me"}},
	{ConcernCrisis, []string{"unsafe", "in danger", "afraid for my life", "terrified"}},
	{ConcernDistress, []string{"can't take it anymore", "no point in living", "nothing to live for", "completely hopeless"}},
}

// keywordFallback provides reduced coverage when the model path is down.
func (s *SafetyClassifier) keywordFallback(text string) *Classification {
	input := strings.ToLower(text)

	for _, group := range fallbackPatterns {
		for _, keyword := range group.keywords {
			if strings.Contains(input, keyword) {
				return &Classification{
					Concerning:  true,
					ConcernType: group.concernType,
					Category:    concernCategory(group.concernType),
					Analysis: &SafetyAnalysis{
						IsConcerning:   true,
						ConcernType:    group.concernType,
						Confidence:     0.8,
						Reasoning:      "Detected keyword: " + keyword,
						Severity:       "medium",
						ResponseNeeded: true,
					},
					FromFallback: true,
				}
			}
		}
	}

	return &Classification{
		Concerning:   false,
		ConcernType:  ConcernNone,
		Category:     enum.CategoryNone,
		FromFallback: true,
	}
}

// concernCategory maps classifier concern types onto crisis categories for
// flag records. Severe distress is filed with suicidal ideation: both express
// no will to live and route to the same intervention.
func concernCategory(concernType string) enum.CrisisCategory {
	switch concernType {
	case ConcernSuicide, ConcernDistress:
		return enum.CategorySI
	case ConcernAbuse:
		return enum.CategoryEA
	case ConcernCrisis:
		return enum.CategoryHI
	}

	return enum.CategoryNone
}
