// framedump connects to the game WebSocket and prints every decoded frame.
// It never places bets; use it to inspect the event stream and confirm the
// configured event names match what the backend actually sends.
//
// Usage: go run ./cmd/framedump -config configs/rugsbot.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelis/rugsbot/internal/config"
	"github.com/avelis/rugsbot/internal/connection"
	"github.com/avelis/rugsbot/internal/protocol"
)

func main() {
	configPath := flag.String("config", "configs/rugsbot.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full payload JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	clientCfg := connection.DefaultClientConfig()
	clientCfg.URL = cfg.Game.URI
	clientCfg.Origin = cfg.Game.Origin
	clientCfg.UserAgent = cfg.Game.UserAgent
	clientCfg.Headers = cfg.Game.Headers

	client := connection.NewClient(clientCfg, logger)
	if err := client.Connect(ctx); err != nil {
		logger.Error("connect failed", "url", cfg.Game.URI, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	logger.Info("connected, dumping frames", "url", cfg.Game.URI)

	counts := make(map[string]int)
	for {
		select {
		case <-ctx.Done():
			logger.Info("event counts")
			for name, n := range counts {
				fmt.Printf("  %-30s %d\n", name, n)
			}
			return

		case err := <-client.Errors():
			logger.Error("connection error", "error", err)
			os.Exit(1)

		case msg, ok := <-client.Messages():
			if !ok {
				logger.Info("connection closed")
				return
			}

			frame, err := protocol.Decode(msg.Data)
			if err != nil {
				logger.Warn("malformed frame", "error", err, "raw", msg.Data)
				continue
			}

			switch frame.EngineType {
			case protocol.EnginePing:
				// Keep the session alive so the dump can run a while.
				if err := client.Send("3"); err != nil {
					logger.Error("pong failed", "error", err)
					os.Exit(1)
				}
				fmt.Println("ping -> pong")

			case protocol.EngineOpen:
				hs, err := protocol.ParseHandshake(frame)
				if err != nil {
					logger.Warn("unreadable handshake", "error", err)
					continue
				}
				fmt.Printf("open sid=%s pingInterval=%dms pingTimeout=%dms\n",
					hs.SID, hs.PingInterval, hs.PingTimeout)

			case protocol.FrameEvent, protocol.FrameBinaryEvent:
				counts[frame.SocketEvent]++
				if *verbose {
					payload, _ := json.Marshal(frame.Payload)
					fmt.Printf("%s %s %s\n", msg.ReceivedAt.Format("15:04:05.000"), frame.SocketEvent, payload)
				} else {
					fmt.Printf("%s %s\n", msg.ReceivedAt.Format("15:04:05.000"), frame.SocketEvent)
				}

			default:
				fmt.Printf("frame type=%d\n", frame.EngineType)
			}
		}
	}
}
