package ui

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/i978sukhoi/nbwin/internal/netif"
	"github.com/i978sukhoi/nbwin/internal/stats"
)

var interfaceColumns = []string{"Idx", "Name", "Status", "Type", "Rate ↓/↑", "MAC", "Link", "Addresses"}

// showInterfaces refreshes the interface table and brings the overlay to
// the front. The table lists every interface the platform knows about, not
// just the monitored ones; a fresh enumeration catches adapters that came
// up after the session started.
func (d *Dashboard) showInterfaces() {
	ctx, cancel := context.WithTimeout(d.ctx, time.Second)
	defer cancel()

	interfaces, err := d.source.ListInterfaces(ctx)
	if err != nil {
		slog.Warn("Interface listing failed, showing the monitored set", "error", err)
		interfaces = d.session.Interfaces()
	}

	monitored := make(map[int]bool)
	for _, iface := range d.session.Interfaces() {
		monitored[iface.Index] = true
	}

	d.populateInterfaceTable(interfaces, monitored)
	d.pages.ShowPage(pageInterfaces)
}

func (d *Dashboard) populateInterfaceTable(interfaces []netif.Interface, monitored map[int]bool) {
	d.ifaceTable.Clear()

	for col, title := range interfaceColumns {
		cell := tview.NewTableCell(title).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false)
		if title == "Addresses" {
			cell.SetExpansion(1)
		}
		d.ifaceTable.SetCell(0, col, cell)
	}

	selectedIndex := d.session.Selected().Index

	for i, iface := range interfaces {
		row := i + 1

		name := iface.DisplayName()
		if monitored[iface.Index] {
			name = "* " + name
		}

		color := tcell.ColorWhite
		switch {
		case !iface.Up:
			color = tcell.ColorGray
		case iface.Loopback || iface.IsVirtual():
			color = tcell.ColorAqua
		}

		rate := "-"
		if sample, ok := d.session.Sample(iface.Index); ok {
			rate = stats.FormatRate(sample.DownloadRate) + " / " + stats.FormatRate(sample.UploadRate)
		}
		mac := iface.MAC
		if mac == "" {
			mac = "-"
		}
		link := "-"
		if iface.SpeedBits > 0 {
			link = stats.FormatBitRate(iface.SpeedBits)
		}

		values := []string{
			strconv.Itoa(iface.Index),
			name,
			InterfaceStatus(iface),
			InterfaceKind(iface),
			rate,
			mac,
			link,
			JoinAddrs(iface.Addrs),
		}
		for col, value := range values {
			cell := tview.NewTableCell(value).SetTextColor(color)
			switch col {
			case 0:
				cell.SetAlign(tview.AlignRight)
			case 2:
				// Status keeps its own color regardless of the row's.
				if iface.Up {
					cell.SetTextColor(tcell.ColorGreen)
				} else {
					cell.SetTextColor(tcell.ColorRed)
				}
			}
			d.ifaceTable.SetCell(row, col, cell)
		}

		if iface.Index == selectedIndex {
			d.ifaceTable.Select(row, 0)
		}
	}
}
