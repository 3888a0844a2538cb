package main

import (
	"log"

	"github.com/patric-chuzhbe/authsvc/internal/app"
	"github.com/patric-chuzhbe/authsvc/internal/logger"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalln("application init error:", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		logger.Log.Fatalln("application run error:", err)
	}
}
