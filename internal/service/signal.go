// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type signalSource interface {
	Notify(c chan<- os.Signal, sig ...os.Signal)
	Stop(c chan<- os.Signal)
}

// stdLibSignalSource delivers process signals via os/signal.
type stdLibSignalSource struct{}

func (stdLibSignalSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

func (stdLibSignalSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// HandleSignals toggles the temperature unit on SIGUSR1 and the theme on SIGUSR2. The
// dashboard publishes the change, which reprints it in watch mode.
func (s *Service) HandleSignals(ctx context.Context, sigChan chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGUSR1:
				state := s.dash.ToggleUnit()
				s.logger.Debug("temperature unit toggled", slog.String("unit", string(state.Unit)))
			case syscall.SIGUSR2:
				state := s.dash.ToggleTheme()
				s.logger.Debug("theme toggled", slog.String("theme", string(state.Theme)))
			}
		}
	}
}
