package main

import (
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/app/cmd"
)

// @title WA-AKG Gateway API
// @version 1.0
// @description Multi-session messaging gateway with webhooks, auto-replies and scheduled messages.

// @host  localhost:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cmd.StartApp()
}
