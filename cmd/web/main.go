package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/cloud-atlas/pkg/server"
)

var (
	runsDir string
	addr    string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve collected runs and analysis results over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&runsDir, "runs-dir", "d", "runs",
		"Directory holding collected run outputs")
	rootCmd.Flags().StringVarP(&addr, "addr", "a", "",
		"Listen address (default from SERVER_HOST/SERVER_PORT, else :8080)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if addr == "" {
		host := os.Getenv("SERVER_HOST")
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		addr = net.JoinHostPort(host, port)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		RunsDir:         runsDir,
		ShutdownTimeout: 10 * time.Second,
	})

	return api.Start()
}
