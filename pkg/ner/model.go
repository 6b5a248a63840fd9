package ner

import (
	"context"
	"fmt"
	"strings"

	"github.com/bioastra/spacekg/internal/util"
	"github.com/bioastra/spacekg/pkg/ai"
	"github.com/bioastra/spacekg/pkg/common"
)

type modelEntity struct {
	Name string `json:"name" jsonschema_description:"Entity surface form exactly as it appears in the text"`
	Type string `json:"type" jsonschema_description:"One of the allowed entity types"`
}

type modelResponse struct {
	Entities []modelEntity `json:"entities"`
}

// ModelRecognizer extracts mentions with a language model through the
// configured AI adapter. Model output is anchored back to byte
// offsets in the text; entities the model invents that do not occur
// in the text are discarded.
type ModelRecognizer struct {
	client   ai.Client
	maxTries int
}

type NewModelRecognizerParams struct {
	Client   ai.Client
	MaxTries int
}

func NewModelRecognizer(params NewModelRecognizerParams) *ModelRecognizer {
	maxTries := params.MaxTries
	if maxTries <= 0 {
		maxTries = 3
	}
	return &ModelRecognizer{client: params.Client, maxTries: maxTries}
}

func (r *ModelRecognizer) Recognize(ctx context.Context, paperID string, text string) ([]common.Mention, error) {
	types := strings.Join(common.EntityTypes, ", ")
	system := fmt.Sprintf(ai.ExtractPrompt, types, types)

	response, err := util.RetryWithContext(ctx, r.maxTries, func(ctx context.Context) (*modelResponse, error) {
		var out modelResponse
		err := r.client.GenerateCompletionWithFormat(
			ctx,
			"entity_extraction",
			"Entities found in a research paper excerpt",
			text,
			&out,
			ai.WithSystemPrompts(system),
		)
		if err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("model recognition for paper %s: %w", paperID, err)
	}

	lower := strings.ToLower(text)
	var mentions []common.Mention
	seen := make(map[string]bool)
	for _, entity := range response.Entities {
		name := strings.TrimSpace(entity.Name)
		if name == "" {
			continue
		}
		idx := strings.Index(lower, strings.ToLower(name))
		if idx < 0 {
			continue
		}
		normalized := Normalize(name)
		entityType := MapLabel(entity.Type)
		key := normalized + "|" + entityType
		if seen[key] {
			continue
		}
		seen[key] = true
		mentions = append(mentions, common.Mention{
			ID:             fmt.Sprintf("%s_m%04d", paperID, len(mentions)),
			PaperID:        paperID,
			SurfaceForm:    text[idx : idx+len(name)],
			NormalizedName: normalized,
			Type:           entityType,
			Start:          idx,
			End:            idx + len(name),
			Source:         "model",
		})
	}
	return mentions, nil
}

// CombinedRecognizer merges the output of several recognizers, keeping
// the first mention per normalized name and type.
type CombinedRecognizer struct {
	recognizers []Recognizer
}

func NewCombinedRecognizer(recognizers ...Recognizer) *CombinedRecognizer {
	return &CombinedRecognizer{recognizers: recognizers}
}

func (r *CombinedRecognizer) Recognize(ctx context.Context, paperID string, text string) ([]common.Mention, error) {
	var merged []common.Mention
	seen := make(map[string]bool)
	for _, recognizer := range r.recognizers {
		mentions, err := recognizer.Recognize(ctx, paperID, text)
		if err != nil {
			return nil, err
		}
		for _, mention := range mentions {
			key := mention.NormalizedName + "|" + mention.Type
			if seen[key] {
				continue
			}
			seen[key] = true
			mention.ID = fmt.Sprintf("%s_m%04d", paperID, len(merged))
			merged = append(merged, mention)
		}
	}
	return merged, nil
}
