package main

import (
	"weblog/config"
	"weblog/middleware"
	"weblog/models"
	"weblog/routes"
	"weblog/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// Migration creates the comment table with a cascading foreign key to posts
	db := config.InitDatabase(&models.Post{}, &models.Comment{}, &models.PageView{})

	mailer := utils.NewSMTPMailer(cfg)
	resolver := middleware.NewHTTPIdentityResolver(cfg.IdentityURL)

	r := routes.SetupRouter(db, mailer, resolver)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
