package main

import (
	"fmt"
	"log"

	"tableside/configs"
	"tableside/middlewares"
	"tableside/routes"
	"tableside/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()

	// DB
	configs.ConnectionDB(cfg.DBSource)
	db := configs.DB()
	configs.SetupDatabase()

	if err := configs.SeedVenue(); err != nil {
		log.Fatalf("seed venue failed: %v", err)
	}
	if err := configs.SeedManager(); err != nil {
		log.Fatalf("seed manager failed: %v", err)
	}

	// Realtime order feed
	hub := ws.NewOrderHub()
	go hub.Run()

	// HTTP
	r := gin.Default()
	r.Use(middlewares.CORSMiddleware())

	routes.RegisterRoutes(r, db, cfg, hub)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Println("tableside listening on", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
