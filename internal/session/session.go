// Package session runs one game: a simulation engine and a render engine on
// their own goroutines, connected by mailboxes, with notifications queued
// for the presentation shell.
package session

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tui-defence/internal/config"
	"github.com/vovakirdan/tui-defence/internal/core"
	"github.com/vovakirdan/tui-defence/internal/entity"
	"github.com/vovakirdan/tui-defence/internal/mailbox"
	"github.com/vovakirdan/tui-defence/internal/protocol"
	"github.com/vovakirdan/tui-defence/internal/render"
	"github.com/vovakirdan/tui-defence/internal/sim"
)

// Options configures a session.
type Options struct {
	Rules  config.Config
	Seed   int64 // 0 picks a time-based seed
	Logger *log.Logger
}

// Session is one running game.
type Session struct {
	simInbox    *mailbox.Mailbox[protocol.SimCommand]
	renderInbox *mailbox.Mailbox[protocol.RenderMessage]
	notes       *mailbox.Mailbox[protocol.Notification]

	group   *errgroup.Group
	outcome sim.Outcome
	logger  *log.Logger
}

// Start creates both engines and runs them.
func Start(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &Session{
		simInbox:    mailbox.New[protocol.SimCommand](),
		renderInbox: mailbox.New[protocol.RenderMessage](),
		notes:       mailbox.New[protocol.Notification](),
		group:       &errgroup.Group{},
		logger:      logger,
	}

	simOpts := []sim.Option{sim.WithLogger(logger.WithPrefix("sim"))}
	if opts.Seed != 0 {
		simOpts = append(simOpts, sim.WithSeed(opts.Seed))
	}
	simEngine := sim.New(opts.Rules, s.simInbox, s.renderInbox, s.notes, simOpts...)
	renderEngine := render.New(opts.Rules, s.renderInbox, s.simInbox, s.notes,
		render.WithLogger(logger.WithPrefix("render")))

	s.group.Go(func() error {
		outcome, err := simEngine.Run()
		s.outcome = outcome
		if err != nil {
			// Unblock the shell and the render loop.
			s.renderInbox.Send(protocol.Stop{})
			s.notes.Close()
			return fmt.Errorf("simulation: %w", err)
		}
		return nil
	})
	s.group.Go(func() error {
		err := renderEngine.Run()
		if err != nil {
			s.simInbox.Close()
			s.notes.Close()
			return fmt.Errorf("render: %w", err)
		}
		return nil
	})

	logger.Info("session started", "seed", opts.Seed)
	return s
}

// Resize informs the render engine of a new framebuffer size.
func (s *Session) Resize(width, height int) {
	s.renderInbox.Send(protocol.Resize{Width: width, Height: height})
}

// RequestFrame asks for one frame to be drawn into fb. The caller must not
// touch fb until the matching FrameReady notification.
func (s *Session) RequestFrame(fb *core.Framebuffer) bool {
	return s.renderInbox.Send(protocol.Render{FB: fb})
}

// PlaceGun asks the simulation to buy a gun.
func (s *Session) PlaceGun(t entity.GunType, level int, pos core.Polar) bool {
	return s.simInbox.Send(protocol.PlaceGun{Type: t, Level: level, Position: pos})
}

// NextNotification blocks until a notification is available. It returns
// false once the session has been torn down and all notifications drained.
func (s *Session) NextNotification() (protocol.Notification, bool) {
	return s.notes.Take()
}

// Stop shuts the session down: the render loop receives Stop and the
// simulation inbox is closed. Late sends are dropped.
func (s *Session) Stop() {
	s.renderInbox.Send(protocol.Stop{})
	s.simInbox.Close()
}

// Wait blocks until both engines have exited, then closes the notification
// queue. It returns the simulation outcome and the first engine error.
func (s *Session) Wait() (sim.Outcome, error) {
	err := s.group.Wait()
	s.renderInbox.Close()
	s.notes.Close()
	if err != nil {
		s.logger.Error("session failed", "err", err)
	} else {
		s.logger.Info("session finished", "outcome", s.outcome)
	}
	return s.outcome, err
}

// IsProtocolError reports whether err is a protocol violation.
func IsProtocolError(err error) bool {
	return errors.Is(err, protocol.ErrUnknownMessage) ||
		errors.Is(err, sim.ErrInvalidGun) ||
		errors.Is(err, render.ErrNoFramebuffer)
}
