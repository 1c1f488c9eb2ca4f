package page

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/five82/kimaideck/internal/kimai"
)

func TestShard_ExhaustiveAndDisjoint(t *testing.T) {
	for _, n := range []int{0, 1, 13, 14, 15, 29, 100} {
		for _, size := range []int{1, 5, 14} {
			t.Run(fmt.Sprintf("n=%d/size=%d", n, size), func(t *testing.T) {
				elements := make([]int, n)
				for i := range elements {
					elements[i] = i
				}

				var joined []int
				for index := 0; ; index++ {
					shard := Shard(elements, index, size)
					if len(shard) == 0 {
						break
					}
					if len(shard) > size {
						t.Fatalf("shard %d has %d elements, want at most %d", index, len(shard), size)
					}
					joined = append(joined, shard...)
				}
				if !slices.Equal(joined, elements) {
					t.Fatalf("joined shards = %v, want %v", joined, elements)
				}
			})
		}
	}
}

func TestShard_OutOfRange(t *testing.T) {
	elements := []string{"a", "b", "c"}
	tests := []struct {
		index int
		size  int
		want  int
	}{
		{index: 0, size: 2, want: 2},
		{index: 1, size: 2, want: 1},
		{index: 2, size: 2, want: 0},
		{index: -1, size: 2, want: 0},
		{index: 0, size: 0, want: 0},
	}
	for _, tt := range tests {
		if got := Shard(elements, tt.index, tt.size); len(got) != tt.want {
			t.Fatalf("Shard(index=%d, size=%d) len = %d, want %d", tt.index, tt.size, len(got), tt.want)
		}
	}
}

func TestShard_DoesNotAliasFollowingElements(t *testing.T) {
	elements := []int{1, 2, 3, 4}
	_ = append(Shard(elements, 0, 2), 99)
	if elements[2] != 3 {
		t.Fatalf("append to shard overwrote element: %v", elements)
	}
}

func customerFixture(n int) (*fakeAPI, []kimai.Customer) {
	api := newFakeAPI()
	for i := 1; i <= n; i++ {
		c := kimai.Customer{ID: i, Name: fmt.Sprintf("Customer %d", i)}
		api.customers = append(api.customers, c)
		api.projects = append(api.projects, kimai.Project{ID: 100 + i, Name: fmt.Sprintf("Project %d", i), Customer: i})
	}
	return api, api.customers
}

func TestPager_NavigationKeyWraps(t *testing.T) {
	tests := []struct {
		name      string
		elements  int
		tiles     int
		wantCycle []int
	}{
		{name: "single shard", elements: 3, tiles: 15, wantCycle: []int{0, 0, 0}},
		{name: "exact multiple", elements: 28, tiles: 15, wantCycle: []int{1, 0, 1, 0}},
		{name: "partial last shard", elements: 30, tiles: 15, wantCycle: []int{1, 2, 0, 1}},
		{name: "empty list", elements: 0, tiles: 6, wantCycle: []int{0, 0}},
		{name: "two keys", elements: 3, tiles: 2, wantCycle: []int{1, 2, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, _ := customerFixture(tt.elements)
			clock := &fakeClock{now: time.Now()}
			list, err := NewCustomerList(context.Background(), testDeps(api, tt.tiles, clock))
			if err != nil {
				t.Fatalf("NewCustomerList returned error: %v", err)
			}

			lastShard := 0
			if tt.elements > 0 {
				lastShard = (tt.elements - 1) / (tt.tiles - 1)
			}
			for step, want := range tt.wantCycle {
				res, err := list.OnKeyPress(context.Background(), tt.tiles-1, 500*time.Millisecond)
				if err != nil {
					t.Fatalf("OnKeyPress returned error: %v", err)
				}
				if res.Action != ActionRender {
					t.Fatalf("step %d: action = %v, want render", step, res.Action)
				}
				got := list.Index()
				if got < 0 || got > lastShard {
					t.Fatalf("step %d: index = %d, outside [0,%d]", step, got, lastShard)
				}
				if got != want {
					t.Fatalf("step %d: index = %d, want %d", step, got, want)
				}
			}
		})
	}
}

func TestPager_LongPressReturnsDashboardFromAnyIndex(t *testing.T) {
	for _, advances := range []int{0, 1, 2, 3} {
		api, _ := customerFixture(40)
		clock := &fakeClock{now: time.Now()}
		list, err := NewCustomerList(context.Background(), testDeps(api, 15, clock))
		if err != nil {
			t.Fatalf("NewCustomerList returned error: %v", err)
		}
		for i := 0; i < advances; i++ {
			if _, err := list.OnKeyPress(context.Background(), 14, time.Second); err != nil {
				t.Fatalf("advance returned error: %v", err)
			}
		}

		for _, held := range []time.Duration{LongPress, 5 * time.Second} {
			res, err := list.OnKeyPress(context.Background(), 14, held)
			if err != nil {
				t.Fatalf("OnKeyPress returned error: %v", err)
			}
			if res.Action != ActionSwitch {
				t.Fatalf("index %d held %v: action = %v, want switch", list.Index(), held, res.Action)
			}
			if _, ok := res.Next.(*Dashboard); !ok {
				t.Fatalf("next page = %T, want *Dashboard", res.Next)
			}
		}
	}
}

func TestPager_PressOnEmptyKeyIsIgnored(t *testing.T) {
	api, _ := customerFixture(3)
	clock := &fakeClock{now: time.Now()}
	list, err := NewCustomerList(context.Background(), testDeps(api, 15, clock))
	if err != nil {
		t.Fatalf("NewCustomerList returned error: %v", err)
	}

	for _, key := range []int{3, 13, -1, 20} {
		res, err := list.OnKeyPress(context.Background(), key, 100*time.Millisecond)
		if err != nil {
			t.Fatalf("OnKeyPress(%d) returned error: %v", key, err)
		}
		if res.Action != ActionNone {
			t.Fatalf("OnKeyPress(%d) action = %v, want none", key, res.Action)
		}
	}
	if got := api.count("projectsOf"); got != 0 {
		t.Fatalf("projectsOf calls = %d, want 0", got)
	}
}

func TestPager_RenderClearsUnusedKeys(t *testing.T) {
	api, _ := customerFixture(16)
	clock := &fakeClock{now: time.Now()}
	list, err := NewCustomerList(context.Background(), testDeps(api, 15, clock))
	if err != nil {
		t.Fatalf("NewCustomerList returned error: %v", err)
	}

	s := newFakeSurface(15)
	if err := list.Render(s); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if s.keys[0] != "text:Customer 1" || s.keys[13] != "text:Customer 14" {
		t.Fatalf("first shard keys = %q / %q", s.keys[0], s.keys[13])
	}
	if s.keys[14] != "icon:next" {
		t.Fatalf("navigation key = %q, want icon:next", s.keys[14])
	}

	if _, err := list.OnKeyPress(context.Background(), 14, 0); err != nil {
		t.Fatalf("OnKeyPress returned error: %v", err)
	}
	if err := list.Render(s); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if s.keys[1] != "text:Customer 16" {
		t.Fatalf("key 1 = %q, want Customer 16", s.keys[1])
	}
	for i := 2; i < 14; i++ {
		if s.keys[i] != "clear" {
			t.Fatalf("key %d = %q, want clear", i, s.keys[i])
		}
	}
}

func TestPager_RequiresTwoKeys(t *testing.T) {
	api, _ := customerFixture(2)
	clock := &fakeClock{now: time.Now()}
	if _, err := NewCustomerList(context.Background(), testDeps(api, 1, clock)); err == nil {
		t.Fatalf("NewCustomerList with one key returned nil error")
	}
}
