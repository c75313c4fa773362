// Package ui provides the interactive terminal dashboard for nbwin.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/i978sukhoi/nbwin/internal/monitor"
	"github.com/i978sukhoi/nbwin/internal/netif"
	"github.com/i978sukhoi/nbwin/internal/publicip"
)

const (
	pageMain       = "main"
	pageInterfaces = "interfaces"

	// DefaultPollInterval is how often the tick deadline is checked.
	DefaultPollInterval = 100 * time.Millisecond
)

// Options configures the dashboard.
type Options struct {
	// PollInterval is how often the tick deadline is checked.
	PollInterval time.Duration
	// Resolver supplies the public address for the header; nil disables
	// the lookup.
	Resolver *publicip.Resolver
}

// Dashboard is the interactive terminal user interface. Every session call
// happens on the tview event loop goroutine: key handlers run there already
// and the tick loop hands its work over via QueueUpdateDraw.
type Dashboard struct {
	app   *tview.Application
	pages *tview.Pages

	header     *tview.TextView
	download   *tview.TextView
	upload     *tview.TextView
	footer     *tview.TextView
	ifaceTable *tview.Table

	session  *monitor.Session
	source   netif.Source
	resolver *publicip.Resolver

	pollInterval time.Duration
	graphWidth   int

	ctx       context.Context
	done      chan struct{}
	closeOnce sync.Once
}

// NewDashboard creates the dashboard for an initialized session. The source
// is used to list all interfaces for the interface overlay, including the
// ones the session does not monitor.
func NewDashboard(session *monitor.Session, source netif.Source, opts Options) *Dashboard {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	d := &Dashboard{
		app:          tview.NewApplication(),
		session:      session,
		source:       source,
		resolver:     opts.Resolver,
		pollInterval: poll,
		graphWidth:   session.SelectedWindow().Capacity(),
		done:         make(chan struct{}),
	}
	d.setupWidgets()

	return d
}

func (d *Dashboard) setupWidgets() {
	d.header = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	d.header.SetBorder(true)
	d.header.SetTitle(" nbwin ")
	d.header.SetBorderColor(tcell.ColorAqua)

	d.download = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	d.download.SetBorder(true)
	d.download.SetTitle(" Incoming ")
	d.download.SetBorderColor(tcell.ColorGreen).SetTitleColor(tcell.ColorGreen)

	d.upload = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	d.upload.SetBorder(true)
	d.upload.SetTitle(" Outgoing ")
	d.upload.SetBorderColor(tcell.ColorRed).SetTitleColor(tcell.ColorRed)

	d.footer = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)
	d.footer.SetTextColor(tcell.ColorGray)
	d.footer.SetText(FooterText())

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.header, 4, 0, false).
		AddItem(d.download, 0, 1, false).
		AddItem(d.upload, 0, 1, false).
		AddItem(d.footer, 1, 0, false)

	d.ifaceTable = tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	d.ifaceTable.SetBorder(true)
	d.ifaceTable.SetTitle(" Interfaces (press i or Esc to close) ")

	d.pages = tview.NewPages().
		AddPage(pageMain, layout, true, true).
		AddPage(pageInterfaces, centered(d.ifaceTable, 96, 18), true, false)

	d.app.SetRoot(d.pages, true)
	d.app.SetInputCapture(d.handleKey)
}

// centered wraps a primitive in a fixed-size box floating over the page.
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

// Run starts the event loop and blocks until quit. Cancelling the context
// stops the dashboard from outside.
func (d *Dashboard) Run(ctx context.Context) error {
	d.ctx = ctx

	d.render()
	go d.tickLoop(ctx)

	if err := d.app.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}

	return nil
}

// tickLoop wakes at the poll interval and queues a collection cycle on the
// event loop whenever one is due. The session itself is only touched inside
// the queued closure.
func (d *Dashboard) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.app.Stop()
			return
		case <-d.done:
			return
		case now := <-ticker.C:
			d.app.QueueUpdateDraw(func() {
				if !d.session.TickDue(now) {
					return
				}
				if err := d.session.Tick(d.ctx); err != nil {
					slog.Error("Collection tick failed", "error", err)
				}
				d.render()
			})
		}
	}
}

func (d *Dashboard) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if d.overlayVisible() {
		if event.Key() == tcell.KeyEscape ||
			(event.Key() == tcell.KeyRune && (event.Rune() == 'i' || event.Rune() == 'q')) {
			d.pages.HidePage(pageInterfaces)
			return nil
		}
		// Remaining keys scroll the table.
		return event
	}

	switch event.Key() {
	case tcell.KeyLeft:
		d.command(monitor.CommandSelectPrevious)
		return nil
	case tcell.KeyRight:
		d.command(monitor.CommandSelectNext)
		return nil
	case tcell.KeyEscape, tcell.KeyCtrlC:
		d.quit()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'h':
			d.command(monitor.CommandSelectPrevious)
			return nil
		case 'l':
			d.command(monitor.CommandSelectNext)
			return nil
		case ' ':
			d.command(monitor.CommandForceUpdate)
			return nil
		case 'r':
			d.command(monitor.CommandResetHistory)
			return nil
		case 'i':
			d.showInterfaces()
			return nil
		case 'q':
			d.quit()
			return nil
		}
	}

	return event
}

func (d *Dashboard) overlayVisible() bool {
	name, _ := d.pages.GetFrontPage()
	return name == pageInterfaces
}

func (d *Dashboard) command(cmd monitor.Command) {
	if err := d.session.Handle(d.ctx, cmd); err != nil {
		slog.Warn("Command failed", "command", cmd, "error", err)
	}
	d.render()
}

func (d *Dashboard) quit() {
	if err := d.session.Handle(d.ctx, monitor.CommandQuit); err != nil {
		slog.Warn("Quit command failed", "error", err)
	}
	d.closeOnce.Do(func() {
		close(d.done)
	})
	d.app.Stop()
}

// render repaints every pane from the session's current state.
func (d *Dashboard) render() {
	iface := d.session.Selected()

	publicAddr := ""
	if d.resolver != nil {
		local := PrimaryAddr(iface.Addrs)
		if addr, ok := d.resolver.Lookup(); ok && local != "" && publicip.IsPrivate(local) {
			publicAddr = addr
		}
	}

	d.header.SetText(HeaderText(iface, d.session.SelectedIndex(), len(d.session.Interfaces()), publicAddr))

	// Zero-valued before the first sample, which renders as idle.
	sample, _ := d.session.LatestSample()
	window := d.session.SelectedWindow()

	d.download.SetText(paneText("green",
		Sparkline(window.Download(), window.MaxDownload(), d.graphWidth),
		Gauge(sample.DownloadRate/window.MaxDownload(), d.graphWidth),
		RateSummary(sample.DownloadRate, window.PeakDownload(), sample.TotalDownloaded)))
	d.upload.SetText(paneText("red",
		Sparkline(window.Upload(), window.MaxUpload(), d.graphWidth),
		Gauge(sample.UploadRate/window.MaxUpload(), d.graphWidth),
		RateSummary(sample.UploadRate, window.PeakUpload(), sample.TotalUploaded)))
}

// paneText stacks a rate pane: history graph, instantaneous gauge against
// the same scale, then the numbers line.
func paneText(color, spark, gauge, summary string) string {
	return fmt.Sprintf("[%s]%s\n%s[-]\n%s", color, spark, gauge, summary)
}
