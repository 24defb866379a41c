package main

import (
	"blogforge/cmd/handlers"
	"blogforge/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
