// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/events"
)

// streamedEvents is every event name fanned out to websocket subscribers.
// events.Bus has no wildcard subscription, so serve registers one handler
// per name in this closed set.
var streamedEvents = []events.Name{
	events.PermissionCheckBefore,
	events.PermissionCheckAfter,
	events.RoleAssigned,
	events.RoleUnassigned,
	events.PermissionGranted,
	events.PermissionRevoked,
	events.PermissionTemporaryGrant,
	events.PermissionTemporaryRevoke,
	events.PermissionOneTimeGrant,
}

func newServeCmd(cli *cliFlags) *cobra.Command {
	var listenAddr, metricsPath, eventsPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host a metrics endpoint and a live event-stream websocket over an engine instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg, err := loadConfig(cli, flags, map[string]string{
				"listen-addr":  "server.listen_addr",
				"metrics-path": "server.metrics_path",
				"events-path":  "server.events_path",
			})
			if err != nil {
				return err
			}

			logger := newLogger()
			reg := prometheus.NewRegistry()

			ecfg := warden.DefaultConfig()
			ecfg.EnableCache = cfg.EnableCache
			ecfg.Cache = warden.CacheConfig{MaxSize: cfg.Cache.MaxSize, TTL: cfg.Cache.TTL}
			ecfg.EnableEvents = true
			ecfg.Strict = cfg.Strict
			ecfg.DefaultDeny = cfg.DefaultDeny
			ecfg.MaxDepth = cfg.MaxDepth
			ecfg.Logger = logger
			ecfg.Registerer = reg

			eng := warden.New(ecfg)
			if cli.snapshotPath != "" {
				if raw, err := os.ReadFile(cli.snapshotPath); err == nil {
					if err := eng.ImportJSON(raw); err != nil {
						return err
					}
				}
			}

			hub := newEventHub(logger)
			for _, name := range streamedEvents {
				n := name
				eng.On(n, func(payload any) { hub.broadcast(n, payload) })
			}

			mux := http.NewServeMux()
			mux.Handle(cfg.Server.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			mux.HandleFunc(cfg.Server.EventsPath, hub.serveWS)

			srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: mux}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if cfg.Server.WatchSnapshot && cfg.Server.SnapshotPath != "" {
				stop, err := watchSnapshot(ctx, eng, cfg.Server.SnapshotPath, logger)
				if err != nil {
					return err
				}
				defer stop()
			}

			go func() {
				logger.Info("wardenctl serve listening", "addr", srv.Addr, "metrics", cfg.Server.MetricsPath, "events", cfg.Server.EventsPath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", "error", err)
				}
			}()

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen-addr", "", "Override server.listen_addr")
	cmd.Flags().StringVar(&metricsPath, "metrics-path", "", "Override server.metrics_path")
	cmd.Flags().StringVar(&eventsPath, "events-path", "", "Override server.events_path")
	return cmd
}

// watchSnapshot watches path for writes and re-imports it into eng on
// change, the in-process analogue of a resync loop for a single-process
// engine's own state.
func watchSnapshot(ctx context.Context, eng *warden.Engine, path string, logger *slog.Logger) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				raw, err := os.ReadFile(path)
				if err != nil {
					logger.Warn("snapshot reload: read failed", "error", err)
					continue
				}
				if err := eng.ImportJSON(raw); err != nil {
					logger.Warn("snapshot reload: import failed", "error", err)
					continue
				}
				logger.Info("snapshot reloaded", "path", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("snapshot watcher error", "error", err)
			}
		}
	}()

	return func() {}, nil
}

// eventHub fans out engine events to every connected websocket client.
type eventHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newEventHub(logger *slog.Logger) *eventHub {
	return &eventHub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type eventMessage struct {
	Event   events.Name `json:"event"`
	Payload any         `json:"payload"`
}

func (h *eventHub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain and discard inbound frames so ping/close control frames are
	// processed; this is a one-way event feed, not a request/response
	// protocol.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *eventHub) broadcast(name events.Name, payload any) {
	msg, err := json.Marshal(eventMessage{Event: name, Payload: payload})
	if err != nil {
		h.logger.Warn("event marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Warn("event write failed", "error", err)
		}
	}
}
