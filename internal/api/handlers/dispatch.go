package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencollective/frontend/internal/metrics"
	"github.com/opencollective/frontend/internal/routes"
)

// HandleDispatch resolves every request gin has no route for: against the
// asset table first, then the page table. Unresolved paths get the not
// found page.
func HandleDispatch(assetTable, pageTable *routes.Table, assets *AssetHandler, pages *PageHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		readOnly := method == http.MethodGet || method == http.MethodHead

		if readOnly {
			if m, err := assetTable.ResolveURL(c.Request.URL); err == nil {
				c.Set(metrics.PageKey, m.Name)
				assets.Serve(c, m)
				return
			}
		}

		m, err := pageTable.ResolveURL(c.Request.URL)
		if err != nil {
			c.Set(metrics.PageKey, "notfound")
			pages.NotFound(c)
			return
		}
		c.Set(metrics.PageKey, m.Name)

		switch {
		case readOnly:
			pages.Render(c, m)
		case method == http.MethodPost:
			pages.Submit(c, m)
		default:
			c.Header("Allow", "GET, HEAD, POST")
			c.String(http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleHealth handles GET /health
func HandleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
