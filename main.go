package main

import (
	"log"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"selectionexport/collections"
	"selectionexport/handlers"
	"selectionexport/services"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	assetsDir := os.Getenv("ASSETS_DIR")
	if assetsDir == "" {
		assetsDir = "./assets"
	}
	assets := services.NewAssetStore(assetsDir)
	smtp := services.EmailConfigFromEnv()

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))
		se.Router.GET("/assets/files/{path...}", apis.Static(os.DirFS(assetsDir), false))

		// ── Selection exports ────────────────────────────────────
		se.Router.POST("/selections/export/pdf", handlers.HandleSelectionExportPDF(app, assets))
		se.Router.POST("/selections/export/csv", handlers.HandleSelectionExportCSV(app))
		se.Router.POST("/selections/export/xlsx", handlers.HandleSelectionExportExcel(app))
		se.Router.POST("/selections/export/email", handlers.HandleSelectionExportEmail(app, assets, smtp))

		// ── Merge assets ─────────────────────────────────────────
		se.Router.GET("/assets", handlers.HandleAssetList(assets))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
