package main

import (
	"log"
	"os"

	"assetbucket/assets"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func mustLoadEnv() {
	_ = godotenv.Load()
}

func main() {
	mustLoadEnv()

	r := gin.Default()
	r.Use(cors.Default())

	if _, err := assets.RegisterRoutes(r); err != nil {
		log.Fatalf("register asset routes: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8088"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("start server: %v", err)
	}
}
