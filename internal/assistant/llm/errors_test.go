package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{fmt.Errorf("401 Unauthorized"), KindAuth},
		{fmt.Errorf("invalid api key provided"), KindAuth},
		{fmt.Errorf("429 Too Many Requests"), KindQuota},
		{fmt.Errorf("quota exceeded for project"), KindQuota},
		{fmt.Errorf("rate limit reached"), KindQuota},
		{fmt.Errorf("dial tcp 127.0.0.1:11434: connection refused"), KindNetwork},
		{context.DeadlineExceeded, KindNetwork},
		{errors.New("something odd happened"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.want, classify(tc.err))
		})
	}
}

func TestUserMessageNeverLeaksDetails(t *testing.T) {
	raw := errors.New("401 invalid api key sk-abc123 for https://api.example.com")
	be := wrapBackendError("openai", raw)

	assert.Equal(t, KindAuth, be.Kind)
	assert.NotContains(t, be.UserMessage(), "sk-abc123")
	assert.NotContains(t, be.UserMessage(), "api.example.com")
}
