// Command ipmiclient dials a BMC and runs the IPMI v2.0/RMCP+ session
// establishment handshake, logging the outcome.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"ipmiserial/config"
	"ipmiserial/ipmi"
)

var Version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Infof("Starting ipmiclient v%s", Version)
	log.Infof("  BMC: %s", cfg.BMC.ServerAddr)
	log.Infof("  Privilege level: %s", cfg.BMC.PrivilegeLevel)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Interrupted, shutting down...")
		cancel()
		os.Exit(1)
	}()

	privilege, err := cfg.PrivilegeLevel()
	if err != nil {
		log.Fatalf("Invalid privilege level: %v", err)
	}

	client, err := ipmi.New(cfg.BMC.ServerAddr, cfg.TransportOptions())
	if err != nil {
		log.Fatalf("Failed to connect to BMC: %v", err)
	}
	defer client.Close()
	client.Privilege = privilege

	if err := client.EstablishConnection(cfg.BMC.Username, string(cfg.BMC.Password)); err != nil {
		log.Fatalf("Session establishment failed: %v", err)
	}

	log.Info("Session established")
}
