//go:generate weaver generate ./pkg/api ./pkg/services ./pkg/model ./pkg/apperr

package main

import (
	"context"
	"log"

	"campusnet/pkg/api"

	"github.com/ServiceWeaver/weaver"
	"github.com/joho/godotenv"
)

// entry file for the campusnet application, services live in "pkg"
func main() {
	// secrets such as JWT_SECRET may come from a local .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	if err := weaver.Run(context.Background(), api.Serve); err != nil {
		log.Fatal(err)
	}
}
