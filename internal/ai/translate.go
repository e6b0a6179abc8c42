package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Delimiter separates segments inside one oracle request/response. It is
// chosen to be textually unlikely; a response that does not split back
// into the same number of segments fails the whole batch.
const Delimiter = "\n<<<###>>>\n"

const defaultChunkSize = 200

var sentenceBoundaryRe = regexp.MustCompile(`([.!?])\s+`)

type ClientConfig struct {
	Model       string
	Temperature float64
	ChunkSize   int
	Timeout     time.Duration
}

// Client turns plain-text spans into translated spans through one
// chat-completion oracle, bounding each request by sentence-aligned
// chunking.
type Client struct {
	provider IProvider
	cfg      ClientConfig
	cache    *expirable.LRU[string, string]
}

func NewClient(provider IProvider, cfg ClientConfig) *Client {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	return &Client{
		provider: provider,
		cfg:      cfg,
		cache:    expirable.NewLRU[string, string](10000, nil, 2*time.Hour),
	}
}

// Chunk splits text into contiguous sentence groups of at most limit
// characters. A single sentence longer than the limit becomes its own
// oversized chunk; sentences are never split in half.
func Chunk(text string, limit int) []string {
	sentences := splitSentences(text)
	var out []string
	current := ""
	for _, sentence := range sentences {
		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		if len([]rune(candidate)) <= limit {
			current = candidate
			continue
		}
		if current != "" {
			out = append(out, current)
		}
		current = sentence
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceBoundaryRe.FindAllStringSubmatchIndex(text, -1) {
		// loc[3] is the end of the punctuation mark, loc[1] the end of
		// the trailing whitespace.
		sentences = append(sentences, text[last:loc[3]])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

// TranslateBatch sends the texts as one delimiter-joined oracle request
// and returns the translations in input order. A response that cannot be
// split back 1:1 fails the whole batch.
func (c *Client) TranslateBatch(ctx context.Context, texts []string, language string) ([]string, error) {
	if c == nil || c.provider == nil {
		return nil, ErrUnavailable
	}
	if len(texts) == 0 {
		return []string{}, nil
	}
	prompt := fmt.Sprintf(`Translate the following PLAIN TEXT into %s.
Keep meaning and tone.
Return text segments in the same order separated by %s.
Return ONLY the translations.`, language, Delimiter)

	messages := []Message{
		{Role: "system", Content: "Professional translator."},
		{Role: "user", Content: prompt + "\n\n" + strings.Join(texts, Delimiter)},
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	resp, err := c.provider.Chat(ctx, c.cfg.Model, c.cfg.Temperature, messages)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp) == "" {
		return nil, fmt.Errorf("empty oracle response")
	}
	parts := strings.Split(resp, strings.TrimSpace(Delimiter))
	if len(parts) != len(texts) {
		return nil, fmt.Errorf("oracle returned %d segments, want %d", len(parts), len(texts))
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out, nil
}

// TranslateText chunks text, translates each chunk as its own
// single-element batch and rejoins the results with single spaces. Any
// chunk failure fails the whole call, leaving the caller's text intact.
func (c *Client) TranslateText(ctx context.Context, text, language string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}
	cacheKey := translationCacheKey(trimmed, language)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached, nil
	}
	chunks := Chunk(trimmed, c.cfg.ChunkSize)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		res, err := c.TranslateBatch(ctx, []string{chunk}, language)
		if err != nil {
			logutil.GetLogger(ctx).Warn("chunk translation failed",
				zap.String("language", language),
				zap.Int("chunk_len", len(chunk)),
				zap.Error(err),
			)
			return "", err
		}
		out = append(out, res[0])
	}
	result := strings.TrimSpace(strings.Join(out, " "))
	c.cache.Add(cacheKey, result)
	return result, nil
}

func translationCacheKey(text, language string) string {
	hash := sha256.Sum256([]byte(text))
	return language + ":" + hex.EncodeToString(hash[:])
}
