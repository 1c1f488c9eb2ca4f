package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/five82/kimaideck/internal/render"
)

// LongPress is the hold time from which the navigation key leaves a list.
const LongPress = 2000 * time.Millisecond

// Shard returns the index-th run of size elements. Indices past the end
// yield an empty shard.
func Shard[T any](elements []T, index, size int) []T {
	if size <= 0 || index < 0 {
		return nil
	}
	start := index * size
	if start >= len(elements) {
		return nil
	}
	end := min(start+size, len(elements))
	return elements[start:end:end]
}

// pager shows a list across several screens. Keys [0, size) show the
// current shard, key size is the next/back control.
type pager[T any] struct {
	deps     Deps
	size     int
	label    func(T) string
	elements []T

	mu    sync.Mutex
	index int
}

func (p *pager[T]) init(deps Deps, elements []T, label func(T) string) error {
	if deps.Tiles < 2 {
		return fmt.Errorf("list needs at least 2 keys, device has %d", deps.Tiles)
	}
	p.deps = deps
	p.size = deps.Tiles - 1
	p.label = label
	p.elements = elements
	return nil
}

// Index is the shard currently shown.
func (p *pager[T]) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Elements returns the full list.
func (p *pager[T]) Elements() []T {
	return append([]T(nil), p.elements...)
}

func (p *pager[T]) shard() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Shard(p.elements, p.index, p.size)
}

// advance moves to the next shard, wrapping to the first when it is empty.
func (p *pager[T]) advance() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(Shard(p.elements, p.index+1, p.size)) == 0 {
		p.index = 0
	} else {
		p.index++
	}
	return p.index
}

func (p *pager[T]) render(s Surface) error {
	shard := p.shard()
	for i := 0; i < p.size; i++ {
		if i >= len(shard) {
			if err := s.Clear(i); err != nil {
				return err
			}
			continue
		}
		if err := s.Text(i, p.label(shard[i])); err != nil {
			return err
		}
	}
	return s.Icon(p.size, render.IconNext)
}

func (p *pager[T]) onKeyPress(ctx context.Context, key int, held time.Duration, open func(context.Context, T) (Result, error)) (Result, error) {
	log := p.deps.logger()
	if key == p.size {
		if held >= LongPress {
			log.Debug("long press on navigation key, back to dashboard", "held", held)
			return SwitchTo(NewDashboard(p.deps)), nil
		}
		log.Debug("next shard", "index", p.advance())
		return Result{Action: ActionRender}, nil
	}

	shard := p.shard()
	if key < 0 || key >= len(shard) {
		log.Debug("press on empty key ignored", "key", key, "shard_len", len(shard))
		return Result{}, nil
	}
	return open(ctx, shard[key])
}
