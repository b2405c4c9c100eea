package main

import (
	"log"
	"os"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

const (
	defaultConfigFile = "config.yml"
	defaultEnvFile    = "config.env"
)

//	@title			Bookstore API
//	@version		1.0
//	@description	Sellers and the books they own.
//	@BasePath		/
func main() {
	configFile := os.Getenv("BKST_CONFIG_FILE")
	if configFile == "" {
		configFile = defaultConfigFile
	}
	app, err := NewApp(configFile, defaultEnvFile)
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
