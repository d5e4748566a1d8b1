package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	"cafeteria/internal/logger"
	"cafeteria/internal/models"
)

type fakeFetcher struct {
	// gates[weekStart] blocks the catalog call for that week until closed
	gates map[string]chan struct{}
	err   error
}

func (f *fakeFetcher) Menu(ctx context.Context) (models.Catalog, error) {
	return models.NewCatalog([]models.Dish{{ID: 1, Name: "Soup"}}), nil
}

func (f *fakeFetcher) ModuleMenu(ctx context.Context, weekStart models.Date) (models.WeekSchedule, error) {
	if gate, ok := f.gates[weekStart.String()]; ok {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.WeekSchedule{}, ctx.Err()
		}
	}
	if f.err != nil {
		return models.WeekSchedule{}, f.err
	}
	return models.NewWeekSchedule([]models.ScheduleEntry{{DayOfWeek: 0, DishIDs: []int{1}}}), nil
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestLoader_Load(t *testing.T) {
	l := NewLoader(&fakeFetcher{}, logger.Discard())

	snap, err := l.Load(context.Background(), mustDate(t, "2024-06-03"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Catalog) != 1 || snap.Schedule.Empty() {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.View()) != 1 {
		t.Fatalf("view days = %d", len(snap.View()))
	}
	if l.Current() != snap {
		t.Fatalf("Current() did not return the applied snapshot")
	}
}

func TestLoader_SupersededLoadIsDiscarded(t *testing.T) {
	slow := make(chan struct{})
	f := &fakeFetcher{gates: map[string]chan struct{}{"2024-06-03": slow}}
	l := NewLoader(f, logger.Discard())

	type result struct {
		snap *Snapshot
		err  error
	}
	first := make(chan result, 1)
	go func() {
		snap, err := l.Load(context.Background(), mustDate(t, "2024-06-03"))
		first <- result{snap, err}
	}()

	// wait until the first load has taken its generation
	deadline := time.Now().Add(2 * time.Second)
	for l.generation.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first load never started")
		}
		time.Sleep(time.Millisecond)
	}

	second, err := l.Load(context.Background(), mustDate(t, "2024-06-10"))
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}

	close(slow)
	res := <-first
	if !errors.Is(res.err, ErrSuperseded) {
		t.Fatalf("first load error = %v, want ErrSuperseded", res.err)
	}
	if got := l.Current(); got != second || got.WeekStart.String() != "2024-06-10" {
		t.Fatalf("current = %+v, want the second load", got)
	}
}

func TestLoader_FetchError(t *testing.T) {
	boom := errors.New("backend down")
	l := NewLoader(&fakeFetcher{err: boom}, logger.Discard())

	if _, err := l.Load(context.Background(), mustDate(t, "2024-06-03")); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped backend error", err)
	}
	if l.Current() != nil {
		t.Fatalf("failed load must not be applied")
	}
}
