// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Command meitrackd is the headend process: it loads Config, opens the
// durable device inventory, optionally connects the MQTT event bridge,
// and serves the TCP listener until interrupted (§10.7).
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/scattym/go-meitrack/clog"
	"github.com/scattym/go-meitrack/config"
	"github.com/scattym/go-meitrack/eventbridge"
	"github.com/scattym/go-meitrack/inventory"
	"github.com/scattym/go-meitrack/transport"
)

const defaultOTAPollInterval = 5 * time.Second

var (
	listenAddr   = flag.String("listen", "", "TCP address to accept device connections on (default :8800)")
	mqttBroker   = flag.String("mqtt-broker", envOr("MEITRACKD_MQTT_BROKER", ""), "MQTT broker URL for the event bridge; empty disables it")
	inventoryDB  = flag.String("inventory-db", envOr("MEITRACKD_INVENTORY_DB", ""), "bbolt database path for the device inventory")
	strictChksum = flag.Bool("strict", false, "reject frames with a bad checksum instead of flagging and continuing")
	otaPoll      = flag.Duration("ota-poll-interval", defaultOTAPollInterval, "how often to check in-flight OTA sessions for timeouts")
)

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func main() {
	flag.Parse()

	cfg := config.Config{
		ListenAddr:      *listenAddr,
		MQTTBrokerURL:   *mqttBroker,
		InventoryDBPath: *inventoryDB,
		Strict:          *strictChksum,
	}
	if err := cfg.Valid(); err != nil {
		log.Fatalf("meitrackd: invalid configuration: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("meitrackd: building logger: %v", err)
	}
	defer zapLogger.Sync()

	logger := clog.NewLogger("meitrackd ")
	logger.SetLogProvider(clog.NewZapProvider(zapLogger))
	logger.LogMode(true)

	db, err := inventory.OpenDB(cfg.InventoryDBPath)
	if err != nil {
		log.Fatalf("meitrackd: opening inventory %s: %v", cfg.InventoryDBPath, err)
	}
	defer db.Close()

	var bridge *eventbridge.Bridge
	if cfg.MQTTBrokerURL != "" {
		bridge, err = eventbridge.New(eventbridge.Config{
			BrokerURL: cfg.MQTTBrokerURL,
			ClientID:  "meitrackd",
		}, logger)
		if err != nil {
			log.Fatalf("meitrackd: connecting to MQTT broker %s: %v", cfg.MQTTBrokerURL, err)
		}
		defer bridge.Close()
	}

	listener := &transport.Listener{
		Config:      cfg,
		Inventory:   db,
		EventBridge: bridge,
		Logger:      logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go pollOTATimeouts(ctx, listener, *otaPoll)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("meitrackd: shutting down")
		cancel()
	}()

	log.Printf("meitrackd: listening on %s", cfg.ListenAddr)
	if err := listener.Listen(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("meitrackd: listener stopped: %v", err)
	}
}

func pollOTATimeouts(ctx context.Context, listener *transport.Listener, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			listener.PollTimeouts(now)
		}
	}
}
