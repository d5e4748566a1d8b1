package shell

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"cafeteria/internal/models"
)

func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(2) + " RUB"
}

func (s *Shell) dishName(id int) string {
	if snap := s.loader.Current(); snap != nil {
		if d, ok := snap.Catalog.Lookup(id); ok {
			return d.Name
		}
	}
	return fmt.Sprintf("dish #%d", id)
}

func (s *Shell) printTotal() {
	t := s.builder.ComputeTotal()
	fmt.Fprintf(s.out, "Selected: %d dish(es), total %s\n", t.Count, formatPrice(t.Price))
}

// renderMenu prints the applied menu, marking selected dishes with their quantity
func (s *Shell) renderMenu() {
	snap := s.loader.Current()
	if snap == nil {
		return
	}
	view := snap.View()
	if len(view) == 0 {
		fmt.Fprintf(s.out, "No menu published for the week of %s\n", snap.WeekStart)
		return
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, day := range view {
		fmt.Fprintf(tw, "%s (%d)\n", day.Name, day.Day)
		for _, group := range day.Groups {
			fmt.Fprintf(tw, "  %s\n", group.Title)
			for _, dish := range group.Dishes {
				mark := "[ ]"
				if q := s.builder.Quantity(day.Day, dish.ID); q > 0 {
					mark = fmt.Sprintf("[%d]", q)
				}
				fmt.Fprintf(tw, "    %s\t#%d\t%s\t%d g\t%s\n", mark, dish.ID, dish.Name, dish.QuantityGrams, formatPrice(dish.PriceRub))
			}
		}
	}
	tw.Flush()
	s.printTotal()
}

func (s *Shell) renderOrders(orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "No orders yet")
		return
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tWEEK\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n", o.ID, o.WeekStartDate, o.Status, formatPrice(o.TotalAmount))
	}
	tw.Flush()
}

func (s *Shell) renderReport(day models.Date, rep *models.SummaryReport) {
	fmt.Fprintf(s.out, "Paid orders for %s\n", day)
	if len(rep.Items) == 0 {
		fmt.Fprintln(s.out, "Nothing sold")
		return
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DISH\tCOUNT\tREVENUE")
	for _, item := range rep.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", item.Dish, item.Count, formatPrice(item.Revenue))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\n", formatPrice(rep.TotalRevenue))
	tw.Flush()
}

func (s *Shell) renderHelp() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", commands[name].usage, commands[name].help)
	}
	fmt.Fprintln(tw, "  quit\tleave the shell")
	tw.Flush()
}
