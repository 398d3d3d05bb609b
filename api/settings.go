package api

import (
	"github.com/gin-gonic/gin"

	"github.com/focusflow-app/focusflow/log"
)

// GetSettings handles GET /api/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.server.DB().GetAllSettings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load settings")
		RespondInternalError(c, "failed to load settings")
		return
	}
	RespondData(c, settings)
}

// UpdateSettings handles PATCH /api/settings with a partial key/value map
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	if len(updates) == 0 {
		RespondValidationError(c, "no settings provided")
		return
	}

	if err := h.server.DB().UpdateSettings(updates); err != nil {
		log.Error().Err(err).Msg("Failed to update settings")
		RespondInternalError(c, "failed to update settings")
		return
	}

	// Log level changes take effect immediately
	if level, ok := updates["log_level"]; ok {
		log.SetLevel(level)
	}

	settings, err := h.server.DB().GetAllSettings()
	if err != nil {
		RespondInternalError(c, "failed to load settings")
		return
	}
	RespondData(c, settings)
}

// ResetSettings handles DELETE /api/settings, dropping every stored override
func (h *Handlers) ResetSettings(c *gin.Context) {
	if err := h.server.DB().ResetSettings(); err != nil {
		log.Error().Err(err).Msg("Failed to reset settings")
		RespondInternalError(c, "failed to reset settings")
		return
	}

	settings, err := h.server.DB().GetAllSettings()
	if err != nil {
		RespondInternalError(c, "failed to load settings")
		return
	}
	log.SetLevel(settings["log_level"])
	RespondData(c, settings)
}
