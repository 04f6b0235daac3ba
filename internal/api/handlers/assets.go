package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencollective/frontend/internal/routes"
	"github.com/opencollective/frontend/internal/static"
)

// AssetHandler serves the parameterized assets: donate button images and
// the embeddable button script
type AssetHandler struct {
	Responder *static.Responder
}

// Serve answers a request resolved against the asset table
func (h *AssetHandler) Serve(c *gin.Context, m routes.Match) {
	switch m.Name {
	case routes.AssetDonateButtonImage:
		h.Responder.ServeButton(c.Writer, c.Request, c.Query("color"), m.PathParams["size"])
	case routes.AssetDonateButtonScript:
		h.Responder.ServeWidget(c.Writer, c.Request, m.PathParams["collectiveSlug"])
	default:
		c.Status(http.StatusNotFound)
	}
}
