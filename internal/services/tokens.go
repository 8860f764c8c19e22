package services

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"

	"persona-chat/internal/conversation"
)

// Per-message framing overhead used by OpenAI chat models.
const (
	tokensPerMessage = 3
	tokensPerReply   = 3
)

// TokenCounter estimates how many prompt tokens a request will use.
type TokenCounter struct {
	mu     sync.Mutex
	codecs map[string]tokenizer.Codec
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{codecs: make(map[string]tokenizer.Codec)}
}

func (c *TokenCounter) codec(model string) (tokenizer.Codec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if codec, ok := c.codecs[model]; ok {
		return codec, nil
	}

	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return nil, err
		}
	}
	c.codecs[model] = codec
	return codec, nil
}

// Count returns the estimated prompt size of messages for model, or 0 when
// no tokenizer is available.
func (c *TokenCounter) Count(model string, messages []conversation.Message) int {
	codec, err := c.codec(model)
	if err != nil {
		log.Warn().Err(err).Str("model", model).Msg("No tokenizer for model")
		return 0
	}

	total := tokensPerReply
	for _, m := range messages {
		ids, _, err := codec.Encode(m.Content)
		if err != nil {
			continue
		}
		total += tokensPerMessage + len(ids)
	}
	return total
}
