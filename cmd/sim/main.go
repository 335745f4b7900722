package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/tomz197/circles/internal/config"
	"github.com/tomz197/circles/internal/loop/client"
	"github.com/tomz197/circles/internal/loop/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}

	// The canvas owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := config.GetEnv("SIM_LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := config.NewLogger(logOut, "sim", settings.LogLevel)
	if err != nil {
		return err
	}
	for _, w := range settings.Warnings() {
		logger.Warn(w)
	}

	srv, err := server.NewServer(settings.ServerOptions(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	v := client.NewViewer(srv, bufio.NewReader(os.Stdin), os.Stdout, client.ViewerOptions{
		Name: "local",
	})
	return v.Run()
}
