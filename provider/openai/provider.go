package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/strixhq/strix/provider"
)

// ProviderID is the key under which API keys for this provider are looked up.
const ProviderID = "openai"

type Provider struct {
	opts []option.RequestOption
}

func New(options ...option.RequestOption) *Provider {
	return &Provider{opts: options}
}

func (p *Provider) ID() string { return ProviderID }

func (p *Provider) client(keys provider.APIKeys) (*openai.Client, error) {
	key := keys.Get(ProviderID)
	if key == "" {
		return nil, provider.ErrMissingAPIKey
	}
	opts := append([]option.RequestOption{option.WithAPIKey(key)}, p.opts...)
	return openai.NewClient(opts...), nil
}

func (p *Provider) CompleteText(ctx context.Context, req provider.TextRequest) (string, error) {
	client, err := p.client(req.Keys)
	if err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.Prompt),
		openai.UserMessage(req.Input),
	}
	var schema any
	if req.ResponseSchema != nil {
		schema = req.ResponseSchema
	}
	params := p.buildParams(req.Model, messages, req.JSONMode, schema)

	if req.Streaming {
		return p.runStream(ctx, client, params, req.OnChunk)
	}
	return p.runOnce(ctx, client, params, req.OnChunk)
}

func (p *Provider) CompleteImage(ctx context.Context, req provider.ImageRequest) (string, error) {
	client, err := p.client(req.Keys)
	if err != nil {
		return "", err
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.ImageData)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessageParts(
			openai.TextPart(req.Prompt),
			openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.F(openai.ChatCompletionContentPartImageImageURLParam{
					URL: openai.String(dataURL),
				}),
				Type: openai.F(openai.ChatCompletionContentPartImageTypeImageURL),
			},
		),
	}
	params := p.buildParams(req.Model, messages, req.JSONMode, nil)

	if req.Streaming {
		return p.runStream(ctx, client, params, req.OnChunk)
	}
	return p.runOnce(ctx, client, params, req.OnChunk)
}

func (p *Provider) buildParams(model string, messages []openai.ChatCompletionMessageParamUnion, jsonMode bool, schema any) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F(messages),
		Model:    openai.F(model),
		N:        openai.Int(1),
	}
	if !jsonMode {
		return params
	}
	if schema != nil {
		params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			shared.ResponseFormatJSONSchemaParam{
				Type: openai.F(shared.ResponseFormatJSONSchemaTypeJSONSchema),
				JSONSchema: openai.F(shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   openai.String("response"),
					Schema: openai.F(schema),
				}),
			})
		return params
	}
	params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
		shared.ResponseFormatJSONObjectParam{
			Type: openai.F(shared.ResponseFormatJSONObjectTypeJSONObject),
		})
	return params
}

func (p *Provider) runStream(ctx context.Context, client *openai.Client, params openai.ChatCompletionNewParams, onChunk provider.ChunkFunc) (string, error) {
	strm := client.Chat.Completions.NewStreaming(ctx, params)
	defer strm.Close()

	if err := strm.Err(); err != nil {
		return "", classify(err)
	}

	// The SDK accumulator concatenates raw deltas, so a wipe marker and the
	// placeholder it discards would survive into its final message. The
	// result is folded through the same chunk semantics the callbacks see.
	var acc openai.ChatCompletionAccumulator
	var text provider.Accumulator
	var streamed bool
	for strm.Next() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		chunk := strm.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		streamed = true
		c := provider.ParseChunk(delta)
		text.Add(c)
		if onChunk != nil {
			onChunk(c)
		}
	}
	if err := strm.Err(); err != nil {
		return "", classify(err)
	}

	if streamed {
		return text.String(), nil
	}
	if len(acc.ChatCompletion.Choices) == 0 {
		return "", provider.ErrMalformedResponse
	}
	return acc.ChatCompletion.Choices[0].Message.Content, nil
}

func (p *Provider) runOnce(ctx context.Context, client *openai.Client, params openai.ChatCompletionNewParams, onChunk provider.ChunkFunc) (string, error) {
	chat, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(err)
	}
	if len(chat.Choices) == 0 {
		return "", provider.ErrMalformedResponse
	}
	content := chat.Choices[0].Message.Content
	if onChunk != nil {
		onChunk(provider.ParseChunk(content))
	}
	return content, nil
}

// classify maps SDK errors onto the provider error taxonomy so the executor
// can render them without knowing about this SDK.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if provider.IsAuthStatus(apiErr.StatusCode) {
			return fmt.Errorf("%w: %v", provider.ErrInvalidAPIKey, err)
		}
		status := apiErr.StatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		return &provider.HTTPError{Status: status, Message: apiErr.Error()}
	}
	return err
}
