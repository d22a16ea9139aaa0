package main

import (
	"flag"
	"fmt"
	"liist/config"
	"liist/database"
	"liist/server"
	"os"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run: start, migrate or create-migration")
	configFlag := flag.String("config", ".env", "Optional dotenv file with settings")
	nameFlag := flag.String("name", "", "Migration name (alphanum+underscore only)")
	dirFlag := flag.String("dir", "./database/migrations/sqlite3", "Target directory for the new .sql file")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: liist --command <command-name> [... other options]")
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		server.StartServer(mustLoadConfig(*configFlag))
	case "migrate":
		cfg := mustLoadConfig(*configFlag)
		server.InitLogger()
		database.InitializeDatabase(cfg).Close()
	case "create-migration":
		if err := database.CreateMigration(*dirFlag, *nameFlag); err != nil {
			fmt.Println("Failed to create migration:", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command %q\n", *commandFlag)
		os.Exit(1)
	}
}

func mustLoadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Println("Invalid configuration:", err)
		os.Exit(1)
	}
	return cfg
}
