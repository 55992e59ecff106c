// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizer

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finredact/internal/cost"
	"finredact/internal/resilience"
)

func entityTexts(entities []Entity, label Label) []string {
	var out []string
	for _, e := range entities {
		if e.Label == label {
			out = append(out, e.Text)
		}
	}
	return out
}

func TestHeuristicRecognize(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		persons []string
	}{
		{"all caps known name", "XIA LIN\n123 MAIN ST", []string{"XIA LIN"}},
		{"labelled holder", "Account Holder: John Smith, 123 Main Street", []string{"John Smith", "Main Street"}},
		{"title", "Dear Dr. Emily Stone,", []string{"Dr. Emily Stone"}},
		{"payroll words", "Gross Pay Net Pay", nil},
	}

	h := NewHeuristic()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities, err := h.Recognize(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.persons, entityTexts(entities, Person))
			for _, e := range entities {
				assert.Equal(t, e.Text, tt.text[e.Start:e.End])
			}
		})
	}
}

func TestHeuristicLabelsBusinessWords(t *testing.T) {
	entities, err := NewHeuristic().Recognize(context.Background(), "Paid to Acme Holdings yesterday")
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Holdings"}, entityTexts(entities, Organization))
	assert.Empty(t, entityTexts(entities, Person))
}

func TestHeuristicBusinessContextStaysOnLine(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		person bool
	}{
		{"letterhead on the line above", "WELLS FARGO BANK\nXIA LIN\n", true},
		{"bank named on the line below", "XIA LIN\nFirst National Bank\n", true},
		{"bank on the same line", "XIA LIN bank branch\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities, err := NewHeuristic().Recognize(context.Background(), tt.text)
			require.NoError(t, err)

			var persons []string
			for _, e := range Persons(entities) {
				persons = append(persons, tt.text[e.Start:e.End])
			}
			if tt.person {
				assert.Contains(t, persons, "XIA LIN")
			} else {
				assert.NotContains(t, persons, "XIA LIN")
			}
		})
	}
}

func TestFindAllByLine(t *testing.T) {
	re := regexp.MustCompile(`\b[A-Z]{3,}\s+[A-Z]{3,}\b`)
	text := "ONE TWO THREE\nFOUR FIVE"

	var got []string
	for _, loc := range findAllByLine(re, text) {
		got = append(got, text[loc[0]:loc[1]])
	}
	assert.Equal(t, []string{"ONE TWO", "THREE\nFOUR", "FOUR FIVE"}, got)
}

func TestHeuristicHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHeuristic().Recognize(ctx, "John Smith")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitLines(t *testing.T) {
	text := "x JOHN SMITH\n  JANE DOE\n"
	e := Entity{Text: "JOHN SMITH\n  JANE DOE", Start: 2, End: 2 + len("JOHN SMITH\n  JANE DOE"), Label: Person, Score: 0.9}

	parts := SplitLines(e)
	require.Len(t, parts, 2)
	for _, p := range parts {
		assert.Equal(t, p.Text, text[p.Start:p.End])
		assert.Equal(t, Person, p.Label)
	}
	single := Entity{Text: "ONE LINE", End: 8}
	assert.Equal(t, []Entity{single}, SplitLines(single))
}

type countingRecognizer struct {
	calls int
	err   error
}

func (c *countingRecognizer) Name() string { return "counting" }

func (c *countingRecognizer) Recognize(_ context.Context, text string) ([]Entity, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []Entity{{Text: text, Start: 0, End: len(text), Label: Person, Score: 1}}, nil
}

func TestCachedEvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingRecognizer{}
	c, err := NewCached(inner, 2)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = c.Recognize(ctx, "a")
	_, _ = c.Recognize(ctx, "b")
	_, _ = c.Recognize(ctx, "a")
	assert.Equal(t, 2, inner.calls)

	_, _ = c.Recognize(ctx, "c") // evicts b
	_, _ = c.Recognize(ctx, "b")
	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "counting", c.Name())
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	inner := &countingRecognizer{err: ErrUnavailable}
	c, err := NewCached(inner, 4)
	require.NoError(t, err)

	_, err = c.Recognize(context.Background(), "a")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, _ = c.Recognize(context.Background(), "a")
	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, c.Len())
}

type fakeComprehend struct {
	inputs []string
	out    func(text string) []types.Entity
	err    error
}

func (f *fakeComprehend) DetectEntities(_ context.Context, in *comprehend.DetectEntitiesInput, _ ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error) {
	text := aws.ToString(in.Text)
	f.inputs = append(f.inputs, text)
	if f.err != nil {
		return nil, f.err
	}
	return &comprehend.DetectEntitiesOutput{Entities: f.out(text)}, nil
}

func TestComprehendMapsRuneOffsets(t *testing.T) {
	text := "Café owner José Núñez paid"
	fake := &fakeComprehend{out: func(string) []types.Entity {
		// rune offsets of "José Núñez"
		return []types.Entity{{
			BeginOffset: aws.Int32(11),
			EndOffset:   aws.Int32(21),
			Score:       aws.Float32(0.99),
			Type:        types.EntityTypePerson,
		}}
	}}

	entities, err := NewComprehend(fake).Recognize(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "José Núñez", entities[0].Text)
	assert.Equal(t, "José Núñez", text[entities[0].Start:entities[0].End])
	assert.Equal(t, Person, entities[0].Label)
	assert.InDelta(t, 0.99, entities[0].Score, 1e-6)
}

func TestComprehendErrors(t *testing.T) {
	fake := &fakeComprehend{err: errors.New("throttled")}
	_, err := NewComprehend(fake).Recognize(context.Background(), "John Smith")
	assert.ErrorContains(t, err, "throttled")

	_, err = NewComprehend(nil).Recognize(context.Background(), "John Smith")
	assert.ErrorIs(t, err, ErrUnavailable)

	entities, err := NewComprehend(fake).Recognize(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Nil(t, entities)
}

func TestChunkText(t *testing.T) {
	text := strings.Repeat("line one\n", 10)
	chunks := chunkText(text, 20)
	var rebuilt strings.Builder
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.text), 20)
		assert.Equal(t, c.text, text[c.offset:c.offset+len(c.text)])
		rebuilt.WriteString(c.text)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestNewBackends(t *testing.T) {
	r, err := New(context.Background(), Options{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = New(context.Background(), Options{Backend: "heuristic", CacheSize: 8})
	require.NoError(t, err)
	assert.Equal(t, "heuristic", r.Name())

	_, err = New(context.Background(), Options{Backend: "spacy"})
	assert.Error(t, err)
}

func TestResilientRetriesThrottledComprehend(t *testing.T) {
	calls := 0
	fake := &fakeComprehend{out: func(text string) []types.Entity {
		return []types.Entity{{
			BeginOffset: aws.Int32(0),
			EndOffset:   aws.Int32(int32(len(text))),
			Score:       aws.Float32(0.9),
			Type:        types.EntityTypePerson,
		}}
	}}
	flaky := &flakyAPI{next: fake, failures: 2, calls: &calls}

	retry := resilience.RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 1}
	r := NewResilient(NewComprehend(flaky), retry, nil)

	entities, err := r.Recognize(context.Background(), "Xia Lin")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "comprehend", r.Name())
}

func TestResilientGivesUpOnPermanentErrors(t *testing.T) {
	inner := &countingRecognizer{err: resilience.Permanent(errors.New("access denied"))}
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "counting", FailureThreshold: 1, Cooldown: time.Minute})
	r := NewResilient(inner, resilience.RetryConfig{MaxRetries: 3, InitialInterval: time.Millisecond}, breaker)

	_, err := r.Recognize(context.Background(), "a")
	assert.ErrorContains(t, err, "permanent")
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, resilience.StateClosed, breaker.State())
}

type flakyAPI struct {
	next     EntitiesAPI
	failures int
	calls    *int
}

func (f *flakyAPI) DetectEntities(ctx context.Context, in *comprehend.DetectEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error) {
	*f.calls++
	if *f.calls <= f.failures {
		return nil, &types.TooManyRequestsException{Message: aws.String("slow down")}
	}
	return f.next.DetectEntities(ctx, in, optFns...)
}

func TestComprehendMetersRequests(t *testing.T) {
	fake := &fakeComprehend{out: func(string) []types.Entity { return nil }}
	meter := cost.NewMeter(nil)

	_, err := NewComprehend(fake).WithMeter(meter).Recognize(context.Background(), "Statement for Xia Lin")
	require.NoError(t, err)
	assert.Equal(t, cost.Usage{Requests: 1, Characters: 21, Units: 3}, meter.Usage())
}
