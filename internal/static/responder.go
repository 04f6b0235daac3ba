package static

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	ButtonColorWhite = "white"
	ButtonColorBlue  = "blue"

	ButtonSizeDefault = ""
	ButtonSizeDouble  = "@2x"

	// DefaultHost is used when no website URL is configured
	DefaultHost = "http://localhost:3000"

	widgetTemplate = "widget.js"
)

// placeholder matches {{ name }}
var placeholder = regexp.MustCompile(`{{([\s\S]+?)}}`)

type Config struct {
	StaticDir    string
	TemplatesDir string
	Host         string
}

// Responder serves the donate button assets. Files are read on every request.
type Responder struct {
	staticDir    string
	templatesDir string
	host         string
	logger       *zap.Logger
}

// NewResponder creates a new static responder
func NewResponder(cfg Config, logger *zap.Logger) *Responder {
	host := strings.TrimSuffix(cfg.Host, "/")
	if host == "" {
		host = DefaultHost
	}
	return &Responder{
		staticDir:    cfg.StaticDir,
		templatesDir: cfg.TemplatesDir,
		host:         host,
		logger:       logger,
	}
}

// Host returns the website URL injected into templates
func (r *Responder) Host() string {
	return r.host
}

// ButtonColor clamps color to blue or white
func ButtonColor(color string) string {
	if color == ButtonColorBlue {
		return ButtonColorBlue
	}
	return ButtonColorWhite
}

// ButtonSize clamps size to the default or the double-density variant
func ButtonSize(size string) string {
	if size == ButtonSizeDouble {
		return ButtonSizeDouble
	}
	return ButtonSizeDefault
}

// ButtonAsset returns the file name of a donate button variant
func ButtonAsset(color, size string) string {
	return fmt.Sprintf("donate-button-%s%s.png", ButtonColor(color), ButtonSize(size))
}

// ButtonPath returns the path on disk of a donate button variant
func (r *Responder) ButtonPath(color, size string) string {
	return filepath.Join(r.staticDir, "images", "buttons", ButtonAsset(color, size))
}

// ServeButton streams the donate button image
func (r *Responder) ServeButton(w http.ResponseWriter, req *http.Request, color, size string) {
	path := r.ButtonPath(color, size)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, req)
			return
		}
		r.logger.Error("Failed to read button image", zap.String("path", path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if req.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}

// RenderWidget renders the embeddable button script for a collective
func (r *Responder) RenderWidget(collectiveSlug string) ([]byte, error) {
	path := filepath.Join(r.templatesDir, widgetTemplate)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read widget template: %w", err)
	}

	// values land inside JS string literals
	return Interpolate(content, map[string]string{
		"collectiveSlug": template.JSEscapeString(collectiveSlug),
		"host":           template.JSEscapeString(r.host),
	}), nil
}

// ServeWidget writes the rendered widget script
func (r *Responder) ServeWidget(w http.ResponseWriter, req *http.Request, collectiveSlug string) {
	body, err := r.RenderWidget(collectiveSlug)
	if err != nil {
		r.logger.Error("Failed to render widget", zap.String("collective", collectiveSlug), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/javascript")
	w.WriteHeader(http.StatusOK)
	if req.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

// Interpolate replaces every {{ name }} in content in a single pass.
// Unknown names render as the empty string.
func Interpolate(content []byte, values map[string]string) []byte {
	return placeholder.ReplaceAllFunc(content, func(m []byte) []byte {
		name := strings.TrimSpace(string(m[2 : len(m)-2]))
		return []byte(values[name])
	})
}
