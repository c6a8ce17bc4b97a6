// Command fulfillment prints a producer's upcoming delivery orders grouped by
// weekday and zone.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cornucopia-market/cornucopia-backend/internal/modules/order"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/product"
	"github.com/cornucopia-market/cornucopia-backend/internal/modules/zone"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/config"
	"github.com/cornucopia-market/cornucopia-backend/internal/platform/database"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("fulfillment", flag.ContinueOnError)
	producerFlag := fs.String("producer", "", "producer user id")
	timeout := fs.Duration("timeout", 30*time.Second, "overall query timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	producerID, err := uuid.Parse(*producerFlag)
	if err != nil {
		return fmt.Errorf("-producer must be a user id: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	loc, _ := cfg.Location()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	agg := order.NewAggregator(
		zone.NewService(zone.NewPostgresRepository(db)),
		order.NewPostgresRepository(db),
		loc,
	)
	grouped, err := agg.DeliveryOrdersByDayAndZone(ctx, producerID)
	if err != nil {
		return err
	}
	return render(out, grouped, loc)
}

// render writes one table per weekday, Monday first. Keys that are not
// weekday names sort after the week.
func render(w io.Writer, grouped map[string][]*order.ZoneOrders, loc *time.Location) error {
	if len(grouped) == 0 {
		_, err := fmt.Fprintln(w, "No upcoming delivery orders.")
		return err
	}
	for _, day := range dayOrder(grouped) {
		fmt.Fprintf(w, "\n%s\n", strings.ToUpper(day))
		table := tablewriter.NewWriter(w)
		table.Header("Zone", "Order", "Customer", "Delivery date", "Items", "Total")
		for _, zo := range grouped[day] {
			for _, o := range zo.Orders {
				err := table.Append(
					zo.ZoneName,
					o.OrderNumber,
					o.CustomerName,
					o.DeliveryDate.In(loc).Format("2006-01-02 15:04"),
					itemsLine(o.Items),
					formatCents(o.TotalCents),
				)
				if err != nil {
					return err
				}
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}

func dayOrder(grouped map[string][]*order.ZoneOrders) []string {
	rank := make(map[string]int, len(product.Week))
	for i, d := range product.Week {
		rank[string(d)] = i
	}
	days := make([]string, 0, len(grouped))
	for d := range grouped {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		ri, iok := rank[days[i]]
		rj, jok := rank[days[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return days[i] < days[j]
		}
	})
	return days
}

func itemsLine(items []*order.ItemSummary) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.ProductName))
	}
	return strings.Join(parts, ", ")
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
