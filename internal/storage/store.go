// Package storage persists the small amount of per-visitor state the pages
// read back: the referral id and the matching fund flag.
package storage

import (
	"context"
	"errors"
	"net/http"
)

// Keys read by the checkout
const (
	KeyReferral     = "referral"
	KeyMatchingFund = "matchingFund"
)

// ErrUnknownKey is returned when writing a key outside the persisted set
var ErrUnknownKey = errors.New("storage: unknown key")

// Reader reads visitor state
type Reader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Store reads and writes visitor state for one request
type Store interface {
	Reader
	Set(ctx context.Context, key, value string) error
}

// Provider opens the store of the visitor behind a request
type Provider interface {
	ForRequest(w http.ResponseWriter, r *http.Request) Store
}

func knownKey(key string) bool {
	return key == KeyReferral || key == KeyMatchingFund
}

// Memory is a Store backed by a map, used when no persistence is wanted
type Memory map[string]string

func (m Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m Memory) Set(_ context.Context, key, value string) error {
	if !knownKey(key) {
		return ErrUnknownKey
	}
	m[key] = value
	return nil
}
