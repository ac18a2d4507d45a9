package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/rentmatch/core/dispatch"
	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/infra/logger"
	"github.com/kilianp07/rentmatch/infra/memory"
)

var (
	simOwners int
	simHours  int
	simSpread float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one booking and a concurrent accept race on the in-memory store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return simulate(cmd.Context(), cmd.OutOrStdout(), simOwners, simHours, simSpread)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simOwners, "owners", 8, "number of candidate owners")
	simulateCmd.Flags().IntVar(&simHours, "hours", 0, "rental hours; 0 books a day")
	simulateCmd.Flags().Float64Var(&simSpread, "spread", 0.5, "owner location spread in degrees")
	rootCmd.AddCommand(simulateCmd)
}

// simResult is the outcome of one accept attempt.
type simResult struct {
	owner string
	err   error
}

func simulate(ctx context.Context, out io.Writer, owners, hours int, spread float64) error {
	if owners < 1 {
		return fmt.Errorf("--owners must be at least 1")
	}
	dir := memory.NewDirectory()
	site := model.GeoPoint{Latitude: 45.76, Longitude: 4.83}
	dir.PutAccount(model.Account{ID: "renter", Location: &site, Capabilities: []model.Capability{model.CapabilityRenter}})
	dir.PutAccount(model.Account{ID: "lender", Capabilities: []model.Capability{model.CapabilityOwner}})
	hourly := 15.0
	dir.PutEquipment(model.Equipment{ID: "excavator", OwnerID: "lender", Pricing: model.Pricing{DailyPrice: 320, HourlyPrice: &hourly}})
	for i := 0; i < owners; i++ {
		a := model.Account{ID: fmt.Sprintf("owner-%02d", i), Capabilities: []model.Capability{model.CapabilityOwner}}
		// Every third owner has no known location.
		if i%3 != 2 {
			a.Location = &model.GeoPoint{
				Latitude:  site.Latitude + (rand.Float64()*2-1)*spread,
				Longitude: site.Longitude + (rand.Float64()*2-1)*spread,
			}
		}
		dir.PutAccount(a)
	}

	mgr, err := dispatch.NewManager(memory.NewStore(), dir, dispatch.WithLogger(logger.New("simulate")))
	if err != nil {
		return err
	}
	req := model.BookingRequest{
		EquipmentID: "excavator",
		RenterID:    "renter",
		StartDate:   "2026-06-02",
		Latitude:    &site.Latitude,
		Longitude:   &site.Longitude,
	}
	if hours > 0 {
		req.Hours = &hours
	}
	b, err := mgr.CreateBooking(ctx, req)
	if err != nil {
		return err
	}
	cs, err := mgr.BookingCandidates(ctx, b.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "booking %s: %s, total %.2f, %d candidates\n", b.ID, b.Status, b.TotalCost, len(cs))
	for _, c := range cs {
		dist := "unknown"
		if c.DistanceKnown() {
			dist = fmt.Sprintf("%.1f km", c.DistanceKm)
		}
		fmt.Fprintf(out, "  %s  %-9s %s\n", c.OwnerID, c.Status, dist)
	}

	var (
		mu      sync.Mutex
		results []simResult
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range cs {
		g.Go(func() error {
			_, err := mgr.Accept(gctx, c.ID, c.OwnerID)
			mu.Lock()
			results = append(results, simResult{owner: c.OwnerID, err: err})
			mu.Unlock()
			if err != nil && !errors.Is(err, model.ErrAlreadyConfirmed) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	winners := 0
	for _, r := range results {
		if r.err == nil {
			winners++
			fmt.Fprintf(out, "winner: %s\n", r.owner)
		}
	}
	final, err := mgr.GetBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "accepts: %d, winners: %d, already confirmed: %d, final status %s (owner %s)\n",
		len(results), winners, len(results)-winners, final.Status, final.AcceptedOwnerID)
	if len(cs) > 0 && winners != 1 {
		return fmt.Errorf("expected exactly one winner, got %d", winners)
	}
	return nil
}
