package main

import "github.com/fintrack/backend/internal/cli"

// @title Fintrack Auth Backend API
// @version 1.0
// @description Token issuance, refresh rotation, revocation, and role-based access for the personal-finance tracker.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cli.Execute()
}
