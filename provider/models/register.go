// Package models maintains the registry mapping block model identifiers to
// the providers that serve them.
package models

import (
	"github.com/strixhq/strix"
	"github.com/strixhq/strix/internal/registry"
	"github.com/strixhq/strix/provider"
)

var Global = registry.New[strix.Model]()

func Add(model strix.Model) {
	Global.Add(model.ID(), model)
}

func Get(id string) (strix.Model, bool) {
	return Global.Get(id)
}

func GetOrAdd(id string, modelF func() strix.Model) strix.Model {
	m, _ := Global.GetOrAdd(id, modelF)
	return m
}

func Del(id string) {
	Global.Del(id)
}

// New builds a Model from its preset identifier, wire name, and provider.
func New(id, name string, prov provider.Provider) strix.Model {
	return model{id: id, name: name, prov: prov}
}

type model struct {
	id   string
	name string
	prov provider.Provider
}

func (m model) ID() string                  { return m.id }
func (m model) Name() string                { return m.name }
func (m model) ProviderID() string          { return m.prov.ID() }
func (m model) Provider() provider.Provider { return m.prov }
