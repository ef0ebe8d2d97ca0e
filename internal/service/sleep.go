// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/skycast/internal/logger"
)

const (
	logindInterface = "org.freedesktop.login1.Manager"
	logindMember    = "PrepareForSleep"

	// resumeDebounce is in seconds, matching the unix timestamps it is compared to.
	resumeDebounce  = 2
	signalQueueSize = 8

	busRetryDelay      = 5 * time.Second
	networkWakeupDelay = 10 * time.Second
	resubscribeDelay   = 2 * time.Second
	matchRetryDelay    = 10 * time.Second
)

// monitorSleepResume watches logind for resume events and triggers a weather refresh for
// each of them. Lost bus connections are re-established until ctx is cancelled.
func (s *Service) monitorSleepResume(ctx context.Context) {
	var lastResume int64

	for {
		conn := s.connectToSystemBus(ctx)
		if conn == nil {
			return
		}
		if !s.subscribeSleepSignal(ctx, conn) {
			continue
		}

		signals := make(chan *dbus.Signal, signalQueueSize)
		conn.Signal(signals)
		s.logger.Debug("watching for system resume", slog.String("interface", logindInterface),
			slog.String("member", logindMember))
		s.handleSleepSignals(ctx, signals, &lastResume)

		conn.RemoveSignal(signals)
		if err := conn.Close(); err != nil {
			s.logger.Debug("failed to close system bus connection", logger.Err(err))
		}
		if !waitOrDone(ctx, resubscribeDelay) {
			return
		}
	}
}

// connectToSystemBus retries until a system bus connection is established. It returns nil
// once ctx is cancelled. The connection is closed together with ctx.
func (s *Service) connectToSystemBus(ctx context.Context) *dbus.Conn {
	for {
		conn, err := dbus.ConnectSystemBus()
		if err != nil {
			s.logger.Debug("system bus not available", logger.Err(err))
			if !waitOrDone(ctx, busRetryDelay) {
				return nil
			}
			continue
		}

		context.AfterFunc(ctx, func() {
			_ = conn.Close()
		})
		return conn
	}
}

// subscribeSleepSignal adds the logind match rule. On failure the connection is closed and
// false is returned after a retry delay.
func (s *Service) subscribeSleepSignal(ctx context.Context, conn *dbus.Conn) bool {
	err := conn.AddMatchSignal(dbus.WithMatchInterface(logindInterface), dbus.WithMatchMember(logindMember))
	if err == nil {
		return true
	}

	s.logger.Error("failed to subscribe to logind sleep signal", logger.Err(err))
	if err = conn.Close(); err != nil {
		s.logger.Debug("failed to close system bus connection", logger.Err(err))
	}
	waitOrDone(ctx, matchRetryDelay)
	return false
}

// handleSleepSignals processes signals until ctx is done or the channel is closed.
func (s *Service) handleSleepSignals(ctx context.Context, signals chan *dbus.Signal, lastResume *int64) {
	for {
		select {
		case <-ctx.Done():
			return
		case sgn, ok := <-signals:
			if !ok {
				return
			}
			s.processSleepSignal(ctx, sgn, lastResume)
		}
	}
}

// processSleepSignal acts on PrepareForSleep(false), which logind emits after resuming.
func (s *Service) processSleepSignal(ctx context.Context, sgn *dbus.Signal, lastResume *int64) {
	if len(sgn.Body) != 1 {
		return
	}
	if sleeping, ok := sgn.Body[0].(bool); !ok || sleeping {
		return
	}
	s.handleResumeEvent(ctx, lastResume)
}

// handleResumeEvent triggers a weather refresh after the system woke up. Consecutive resume
// events are debounced and the refresh waits for the network to come back.
func (s *Service) handleResumeEvent(ctx context.Context, lastResume *int64) {
	now := time.Now().Unix()
	if now-atomic.LoadInt64(lastResume) < resumeDebounce {
		return
	}
	atomic.StoreInt64(lastResume, now)

	if !waitOrDone(ctx, networkWakeupDelay) {
		return
	}
	s.logger.Debug("system resumed, refreshing weather data")
	s.refresh.Trigger()
}

// waitOrDone waits for the given duration. It returns false if ctx is done first.
func waitOrDone(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
