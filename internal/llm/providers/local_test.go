// File path: internal/llm/providers/local_test.go
package providers

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestLocalChatExtractsQueryLine(t *testing.T) {
	provider := NewLocalProvider(8)
	out, err := provider.Chat(context.Background(), []Message{{
		Role:    "user",
		Content: "Rewrite the request below.\nShopper query: red running shoes\nReturn only the rewritten query.",
	}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out != "red running shoes" {
		t.Errorf("chat output %q", out)
	}
}

func TestLocalChatFallsBackToWholeMessage(t *testing.T) {
	provider := NewLocalProvider(8)
	out, err := provider.Chat(context.Background(), []Message{{Role: "user", Content: "  just text  "}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if out != "just text" {
		t.Errorf("chat output %q", out)
	}
}

func TestLocalChatNoMessages(t *testing.T) {
	provider := NewLocalProvider(8)
	if _, err := provider.Chat(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty message list")
	}
}

func TestLocalEmbedDeterministicUnitVectors(t *testing.T) {
	provider := NewLocalProvider(16)
	first, err := provider.Embed(context.Background(), []string{"red running shoes", ""})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := provider.Embed(context.Background(), []string{"red running shoes", ""})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("embeddings are not deterministic")
	}
	if len(first) != 2 || len(first[0]) != 16 {
		t.Fatalf("unexpected shape: %d vectors, dim %d", len(first), len(first[0]))
	}
	var norm float64
	for _, v := range first[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-6 {
		t.Errorf("expected unit vector, squared norm %f", norm)
	}
	for _, v := range first[1] {
		if v != 0 {
			t.Fatal("empty input should embed to the zero vector")
		}
	}
}

func TestLocalEmbedSimilarTextsScoreHigher(t *testing.T) {
	provider := NewLocalProvider(64)
	vecs, err := provider.Embed(context.Background(), []string{
		"red running shoes",
		"blue running shoes",
		"cast iron skillet",
	})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	related := dot(vecs[0], vecs[1])
	unrelated := dot(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("expected shared tokens to score higher: related %f, unrelated %f", related, unrelated)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
