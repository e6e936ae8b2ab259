package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"selectionexport/services"
)

// HandleAssetList returns a handler listing the stored tip/tail documents
// available for merge slots.
func HandleAssetList(assets *services.AssetStore) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		names, err := assets.List()
		if err != nil {
			log.Printf("assets: list failed: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to list assets")
		}
		if names == nil {
			names = []string{}
		}
		return e.JSON(http.StatusOK, map[string]any{"assets": names})
	}
}
