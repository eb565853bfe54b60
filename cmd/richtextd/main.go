package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	debug := flag.Bool("debug", false, "enable debug logging, including the BiDi cross-check")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	h := &Handler{Logger: logger}

	logger.Info("richtextd listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, h); err != nil {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
}
