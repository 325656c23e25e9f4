package strix

import "github.com/strixhq/strix/provider"

// Model ties a preset-facing model identifier to the provider that serves it.
type Model interface {
	// ID is the identifier blocks reference through their ModelID field.
	ID() string
	// Name is the wire-level model name sent to the provider.
	Name() string
	// ProviderID identifies the backing service, for display surfaces and logs.
	ProviderID() string
	// Provider returns the completion provider that serves this model.
	Provider() provider.Provider
}
