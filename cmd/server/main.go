package main

import (
	"log"

	"nightlog/internal/transport/http"
)

func main() {
	if err := http.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
