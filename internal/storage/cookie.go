package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	stateCookieName = "oc_state"
	stateCookieTTL  = 30 * 24 * time.Hour
	nonceSize       = 24
)

// CookieProvider keeps visitor state in a cookie sealed with NaCl secretbox,
// so the browser can carry it but not forge it.
type CookieProvider struct {
	key    [32]byte
	secure bool
	logger *zap.Logger
}

// NewCookieProvider derives the sealing key from secret
func NewCookieProvider(secret string, secure bool, logger *zap.Logger) *CookieProvider {
	return &CookieProvider{
		key:    blake2b.Sum256([]byte(secret)),
		secure: secure,
		logger: logger,
	}
}

func (p *CookieProvider) ForRequest(w http.ResponseWriter, r *http.Request) Store {
	return &cookieStore{provider: p, w: w, r: r}
}

type cookieStore struct {
	provider *CookieProvider
	w        http.ResponseWriter
	r        *http.Request
	values   map[string]string
}

func (s *cookieStore) Get(_ context.Context, key string) (string, bool, error) {
	s.load()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *cookieStore) Set(_ context.Context, key, value string) error {
	if !knownKey(key) {
		return ErrUnknownKey
	}
	s.load()
	s.values[key] = value

	sealed, err := s.provider.seal(s.values)
	if err != nil {
		return err
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     stateCookieName,
		Value:    sealed,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.provider.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// load reads the cookie at most once per request
func (s *cookieStore) load() {
	if s.values != nil {
		return
	}
	s.values = make(map[string]string)

	cookie, err := s.r.Cookie(stateCookieName)
	if err != nil {
		return
	}
	values, err := s.provider.open(cookie.Value)
	if err != nil {
		s.provider.logger.Debug("Discarding visitor state cookie", zap.Error(err))
		return
	}
	s.values = values
}

func (p *CookieProvider) seal(values map[string]string) (string, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal visitor state: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	box := secretbox.Seal(nonce[:], data, &nonce, &p.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (p *CookieProvider) open(value string) (map[string]string, error) {
	box, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}
	if len(box) < nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("sealed value too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	data, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &p.key)
	if !ok {
		return nil, fmt.Errorf("sealed value rejected")
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("invalid visitor state: %w", err)
	}
	return values, nil
}
