package openai

import (
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/provider"
)

var modelRegistry = haxmap.New[string, strix.Model]()

func GPT4oMini(opts ...option.RequestOption) strix.Model {
	return Model("gpt-4o-mini", openai.ChatModelGPT4oMini, opts...)
}

func GPT4o(opts ...option.RequestOption) strix.Model {
	return Model("gpt-4o", openai.ChatModelChatgpt4oLatest, opts...)
}

func O1Mini(opts ...option.RequestOption) strix.Model {
	return Model("o1-mini", openai.ChatModelO1Mini, opts...)
}

// Model returns the strix.Model for a preset identifier, creating it (and its
// provider, lazily) on first use.
func Model(id, name string, opts ...option.RequestOption) strix.Model {
	m, _ := modelRegistry.GetOrCompute(id, func() strix.Model {
		return &model{
			id:   id,
			name: name,
			opts: opts,
		}
	})
	return m
}

var _ strix.Model = (*model)(nil)

type model struct {
	id   string
	name string
	opts []option.RequestOption

	prov     provider.Provider
	provOnce sync.Once
}

func (m *model) ID() string { return m.id }

func (m *model) Name() string { return m.name }

func (m *model) ProviderID() string { return ProviderID }

func (m *model) Provider() provider.Provider {
	m.provOnce.Do(func() {
		m.prov = New(m.opts...)
	})
	return m.prov
}
