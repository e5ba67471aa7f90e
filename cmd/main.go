package main

import (
	"os"

	_ "fireplace_rf/docs"
)

// @title                       Fireplace RF API
// @version                     1.0
// @description                 Control and monitor an RF remote controlled fireplace.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
