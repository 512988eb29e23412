package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tableside/internal/domain"
	"tableside/internal/session"
)

// tableLoop is the table-detail view: one coordinator per visit, pending
// cart discarded on 'back'.
func (a *App) tableLoop(ctx context.Context, tableID int64) {
	coord := session.New(a.client, a.client, a.client, a.user.ID, a.logger)
	if err := coord.Load(ctx, tableID); err != nil {
		a.banner("Failed to load table")
		return
	}

	a.renderTable(coord)

	for {
		line, ok := a.readLine(fmt.Sprintf("table %d> ", coord.Table().Number))
		if !ok {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			a.printf("commands: show | order <customers> | add <menuItemId> [qty] | qty <menuItemId> <n> | remove <menuItemId> | send | rm <orderItemId> | menu [category] | state <TABLE_STATE> | refresh | back\n")
		case "show":
			a.renderTable(coord)
		case "order":
			count := 1
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil {
					count = n
				}
			}
			if err := coord.CreateOrder(ctx, count); err != nil {
				a.banner("Failed to create order")
				continue
			}
			a.renderTable(coord)
		case "add":
			if len(fields) < 2 {
				a.banner("usage: add <menuItemId> [qty]")
				continue
			}
			a.addItem(ctx, coord, fields[1:])
		case "qty":
			if len(fields) < 3 {
				a.banner("usage: qty <menuItemId> <n>")
				continue
			}
			id, err1 := strconv.ParseInt(fields[1], 10, 64)
			n, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				a.banner("usage: qty <menuItemId> <n>")
				continue
			}
			coord.SetPendingQuantity(id, n)
			a.renderCart(coord)
		case "remove":
			if len(fields) < 2 {
				a.banner("usage: remove <menuItemId>")
				continue
			}
			if id, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
				coord.RemovePendingItem(id)
			}
			a.renderCart(coord)
		case "send":
			if err := coord.SendPendingItems(ctx); err != nil {
				a.banner("Failed to send order items")
				a.renderCart(coord)
				continue
			}
			a.renderTable(coord)
		case "rm":
			if len(fields) < 2 {
				a.banner("usage: rm <orderItemId>")
				continue
			}
			id, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				a.banner("usage: rm <orderItemId>")
				continue
			}
			if err := coord.RemoveCommittedItem(ctx, id); err != nil {
				a.banner("Failed to remove item")
				continue
			}
			a.renderTable(coord)
		case "menu":
			category := ""
			if len(fields) > 1 {
				category = fields[1]
			}
			a.showMenu(ctx, category)
		case "state":
			if len(fields) < 2 {
				a.banner("usage: state <AVAILABLE|OCCUPIED|RESERVED|OUT_OF_SERVICE>")
				continue
			}
			if _, err := a.client.UpdateTableState(ctx, tableID, domain.TableState(fields[1])); err != nil {
				a.banner("Failed to update table state")
				continue
			}
			if err := coord.Load(ctx, tableID); err != nil {
				a.banner("Failed to reload table")
				continue
			}
			a.renderTable(coord)
		case "refresh":
			if err := coord.Refresh(ctx); err != nil {
				a.banner("Failed to refresh")
				continue
			}
			a.renderTable(coord)
		case "back":
			return
		default:
			a.banner(fmt.Sprintf("unknown command %q, try 'help'", fields[0]))
		}
	}
}

// addItem stages a menu item. The menu is fetched per add so the staged
// price is the current one; the id is validated against the live menu.
func (a *App) addItem(ctx context.Context, coord *session.Coordinator, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		a.banner("usage: add <menuItemId> [qty]")
		return
	}
	qty := 1
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			qty = n
		}
	}

	items, err := a.client.MenuItems(ctx)
	if err != nil {
		a.banner("Failed to load menu")
		return
	}
	for _, m := range items {
		if m.ID == id {
			coord.AddPendingItem(m, qty)
			a.renderCart(coord)
			return
		}
	}
	a.banner(fmt.Sprintf("menu item %d not found", id))
}

func (a *App) renderTable(coord *session.Coordinator) {
	table := coord.Table()
	a.printf("Table %d  %s\n", table.Number, table.TableState)

	switch coord.State() {
	case session.StateNoOrder:
		a.printf("No active order. Start one with 'order <customers>'.\n")
		return
	case session.StateCreatingOrder:
		a.printf("Creating order...\n")
		return
	}

	order := coord.Order()
	a.printf("Order #%d  %s  customers=%d  total=$%.2f\n",
		order.ID, order.OrderState, order.CustomerCount, order.TotalAmount)
	a.renderCart(coord)
}

// renderCart applies the display precedence rule: staged items hide
// committed ones until they are sent.
func (a *App) renderCart(coord *session.Coordinator) {
	if coord.HasPending() {
		a.printf("Pending items (not sent):\n")
		for _, p := range coord.PendingItems() {
			a.printf("  %3d  %-16s x%d  $%.2f each\n", p.MenuItem.ID, p.MenuItem.Name, p.Quantity, p.MenuItem.Price)
		}
		a.printf("Use 'send' to submit.\n")
		return
	}

	committed := coord.CommittedItems()
	if len(committed) == 0 {
		a.printf("No items in this order.\n")
		return
	}
	a.printf("Order items:\n")
	for _, it := range committed {
		a.printf("  #%d  menu item %d  x%d  $%.2f each\n", it.ID, it.MenuItemID, it.Quantity, it.UnitPrice)
	}
}
