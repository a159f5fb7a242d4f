package anthropic

import (
	"context"
	"errors"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm"
)

type mockMessager struct {
	response *anthropic.Message
	err      error
	params   anthropic.MessageNewParams
}

func (m *mockMessager) New(_ context.Context, p anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.params = p
	return m.response, m.err
}

func newMockMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{{Type: "text", Text: text}},
	}
}

func newTestClient(t *testing.T, m *mockMessager) *Client {
	t.Helper()
	prev := newMessager
	newMessager = func(string) Messager { return m }
	t.Cleanup(func() { newMessager = prev })

	c, err := NewClient(Config{APIKey: "test"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}, nil); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestExtractOwners(t *testing.T) {
	tests := []struct {
		name    string
		msg     *anthropic.Message
		err     error
		want    string
		wantErr bool
	}{
		{
			name: "text reply",
			msg:  newMockMessage(` {"owners":[{"surname":"MARTIN"}]} `),
			want: `{"owners":[{"surname":"MARTIN"}]}`,
		},
		{
			name:    "empty reply",
			msg:     &anthropic.Message{Content: []anthropic.ContentBlockUnion{}},
			wantErr: true,
		},
		{
			name:    "api error",
			err:     errors.New("overloaded"),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMessager{response: tt.msg, err: tt.err}
			c := newTestClient(t, m)
			got, err := c.ExtractOwners(context.Background(), llm.VisionRequest{
				Document:    "doc.pdf",
				Page:        1,
				MediaType:   "image/png",
				ImageBase64: "aGVsbG8=",
				Variant:     llm.VariantStrict,
			})
			if tt.wantErr {
				if !errors.Is(err, common.ErrExtraction) {
					t.Fatalf("err = %v, want ErrExtraction", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if len(m.params.Messages) != 1 {
				t.Fatalf("messages = %d, want 1", len(m.params.Messages))
			}
			if !strings.HasPrefix(c.Name(), "anthropic:") {
				t.Errorf("Name() = %q", c.Name())
			}
		})
	}
}
