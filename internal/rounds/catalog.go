// Package rounds defines the registry of interview rounds a session can run.
package rounds

import (
	"errors"
	"fmt"
	"strings"
)

// Round describes a themed segment of the interview.
type Round struct {
	Key       string `mapstructure:"key" json:"key" yaml:"key"`
	Name      string `mapstructure:"name" json:"name" yaml:"name"`
	Questions int    `mapstructure:"questions" json:"questions" yaml:"questions"`
}

// Catalog is an ordered, immutable set of rounds.
type Catalog struct {
	items []Round
}

// ErrUnknownRound is returned by Lookup when nothing matches.
var ErrUnknownRound = errors.New("unknown round")

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{items: []Round{
		{Key: "1", Name: "HR", Questions: 4},
		{Key: "2", Name: "Technical", Questions: 5},
		{Key: "3", Name: "Managerial", Questions: 4},
		{Key: "4", Name: "General", Questions: 5},
	}}
}

// New validates the provided rounds and builds a catalog from them.
// Rounds without a key get their 1-based position as key.
func New(items []Round) (*Catalog, error) {
	if len(items) == 0 {
		return nil, errors.New("at least one round is required")
	}

	seenKeys := make(map[string]struct{}, len(items))
	seenNames := make(map[string]struct{}, len(items))
	rounds := make([]Round, 0, len(items))

	for i, r := range items {
		r.Name = strings.TrimSpace(r.Name)
		r.Key = strings.TrimSpace(r.Key)
		if r.Key == "" {
			r.Key = fmt.Sprintf("%d", i+1)
		}

		if r.Name == "" {
			return nil, fmt.Errorf("round %d: name is required", i+1)
		}
		if r.Questions <= 0 {
			return nil, fmt.Errorf("round %q: questions must be positive, got %d", r.Name, r.Questions)
		}

		key := strings.ToLower(r.Key)
		if _, ok := seenKeys[key]; ok {
			return nil, fmt.Errorf("round %q: duplicate key %q", r.Name, r.Key)
		}
		name := strings.ToLower(r.Name)
		if _, ok := seenNames[name]; ok {
			return nil, fmt.Errorf("duplicate round name %q", r.Name)
		}
		seenKeys[key] = struct{}{}
		seenNames[name] = struct{}{}

		rounds = append(rounds, r)
	}

	return &Catalog{items: rounds}, nil
}

// All returns a copy of the rounds in catalog order.
func (c *Catalog) All() []Round {
	out := make([]Round, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// Names returns round names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.items))
	for _, r := range c.items {
		names = append(names, r.Name)
	}
	return names
}

// Lookup finds a round by key or name, ignoring case.
func (c *Catalog) Lookup(keyOrName string) (Round, error) {
	needle := strings.TrimSpace(keyOrName)
	for _, r := range c.items {
		if strings.EqualFold(r.Key, needle) || strings.EqualFold(r.Name, needle) {
			return r, nil
		}
	}
	return Round{}, fmt.Errorf("%w: %q", ErrUnknownRound, keyOrName)
}
