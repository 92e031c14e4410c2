package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// DashboardRunner manages the TUI dashboard lifecycle
type DashboardRunner struct {
	dashboard *DashboardModel
	program   *tea.Program
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	running   bool
}

// NewDashboardRunner creates a new dashboard runner
func NewDashboardRunner(ctx context.Context, opts Options) *DashboardRunner {
	ctx, cancel := context.WithCancel(ctx)
	return &DashboardRunner{
		dashboard: NewDashboard(opts),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start runs the dashboard until the user quits or the process is signalled.
// Every task still running is killed before Start returns.
func (dr *DashboardRunner) Start() error {
	dr.mu.Lock()
	if dr.running {
		dr.mu.Unlock()
		return fmt.Errorf("dashboard already running")
	}
	dr.running = true
	dr.program = tea.NewProgram(
		dr.dashboard,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(dr.ctx),
	)
	dr.mu.Unlock()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			dr.Stop()
		case <-dr.ctx.Done():
		}
	}()

	_, err := dr.program.Run()

	dr.GracefulShutdown()
	dr.cancel()

	if errors.Is(err, tea.ErrProgramKilled) && dr.ctx.Err() != nil {
		return nil
	}
	return err
}

// Stop asks the running program to quit.
func (dr *DashboardRunner) Stop() {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	if !dr.running {
		return
	}
	dr.running = false

	if dr.program != nil {
		dr.program.Send(quitMsg{})
	}
}

// GracefulShutdown kills every task the dashboard started.
func (dr *DashboardRunner) GracefulShutdown() {
	if err := dr.dashboard.sup.KillAll(); err != nil {
		dr.dashboard.logger.Warn("shutdown left tasks behind", "error", err)
	}
}

// GetDashboard returns the dashboard model
func (dr *DashboardRunner) GetDashboard() *DashboardModel {
	return dr.dashboard
}

// Run starts a dashboard for opts and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	return NewDashboardRunner(ctx, opts).Start()
}
