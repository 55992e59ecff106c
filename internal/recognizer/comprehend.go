// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"

	"finredact/internal/cost"
	"finredact/internal/resilience"
	"finredact/internal/version"
)

// maxComprehendBytes stays under the DetectEntities request size limit
const maxComprehendBytes = 90 * 1024

// EntitiesAPI is the subset of the Comprehend client used here
type EntitiesAPI interface {
	DetectEntities(ctx context.Context, params *comprehend.DetectEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error)
}

// Comprehend recognizes entities with Amazon Comprehend
type Comprehend struct {
	client  EntitiesAPI
	timeout time.Duration
	meter   *cost.Meter
}

// NewComprehend creates a recognizer backed by an existing client
func NewComprehend(client EntitiesAPI) *Comprehend {
	return &Comprehend{client: client, timeout: 30 * time.Second}
}

// WithMeter records every request sent to the service on m
func (c *Comprehend) WithMeter(m *cost.Meter) *Comprehend {
	c.meter = m
	return c
}

// NewComprehendFromRegion loads the default AWS configuration for region
func NewComprehendFromRegion(ctx context.Context, region string) (*Comprehend, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region), config.WithAppID(version.AppID()))
	if err != nil {
		return nil, fmt.Errorf("%w: error loading AWS config: %v", ErrUnavailable, err)
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("%w: AWS credentials not found or invalid: %v", ErrUnavailable, err)
	}
	return NewComprehend(comprehend.NewFromConfig(cfg)), nil
}

// Name returns the recognizer name
func (c *Comprehend) Name() string {
	return "comprehend"
}

// Recognize sends text to DetectEntities in chunks and maps the results
// back to byte offsets of text.
func (c *Comprehend) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if c.client == nil {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var entities []Entity
	for _, ch := range chunkText(text, maxComprehendBytes) {
		c.meter.Record(ch.text)
		out, err := c.client.DetectEntities(ctx, &comprehend.DetectEntitiesInput{
			Text:         aws.String(ch.text),
			LanguageCode: types.LanguageCodeEn,
		})
		if err != nil {
			return nil, fmt.Errorf("error calling Comprehend: %w", classifyComprehendError(err))
		}

		runeToByte := runeOffsets(ch.text)
		for _, e := range out.Entities {
			begin := int(aws.ToInt32(e.BeginOffset))
			end := int(aws.ToInt32(e.EndOffset))
			if begin < 0 || end > len(runeToByte)-1 || begin >= end {
				continue
			}
			start, stop := runeToByte[begin], runeToByte[end]
			entities = append(entities, Entity{
				Text:  ch.text[start:stop],
				Start: ch.offset + start,
				End:   ch.offset + stop,
				Label: labelFor(e.Type),
				Score: float64(aws.ToFloat32(e.Score)),
			})
		}
	}
	return entities, nil
}

// classifyComprehendError marks the service's modelled exceptions so the
// resilient wrapper knows which ones to retry.
func classifyComprehendError(err error) error {
	var (
		throttled *types.TooManyRequestsException
		internal  *types.InternalServerException
		tooLarge  *types.TextSizeLimitExceededException
		invalid   *types.InvalidRequestException
	)
	switch {
	case errors.As(err, &throttled), errors.As(err, &internal):
		return resilience.Transient(err)
	case errors.As(err, &tooLarge), errors.As(err, &invalid):
		return resilience.Permanent(err)
	}
	return err
}

func labelFor(t types.EntityType) Label {
	switch t {
	case types.EntityTypePerson:
		return Person
	case types.EntityTypeOrganization:
		return Organization
	case types.EntityTypeLocation:
		return Location
	default:
		return Other
	}
}

// runeOffsets maps each rune index of s, plus the end, to its byte offset
func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

type chunk struct {
	text   string
	offset int
}

// chunkText splits text into pieces of at most limit bytes, preferring
// line breaks so entities are not cut.
func chunkText(text string, limit int) []chunk {
	var chunks []chunk
	offset := 0
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n') + 1
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, chunk{text: text[:cut], offset: offset})
		offset += cut
		text = text[cut:]
	}
	if text != "" {
		chunks = append(chunks, chunk{text: text, offset: offset})
	}
	return chunks
}
