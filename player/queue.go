package player

import (
	"context"
	"slices"

	"github.com/samber/lo"
)

// queue is the ordered play queue. original holds the pre-shuffle order and
// is only meaningful while shuffled is set.
type queue struct {
	items    []Track
	original []Track
	shuffled bool
}

func (q *queue) indexOf(id string) int {
	_, idx, ok := lo.FindIndexOf(q.items, func(t Track) bool { return t.ID == id })
	if !ok {
		return -1
	}
	return idx
}

func removeFirst(tracks []Track, id string) []Track {
	_, idx, ok := lo.FindIndexOf(tracks, func(t Track) bool { return t.ID == id })
	if !ok {
		return tracks
	}
	return slices.Delete(tracks, idx, idx+1)
}

// Queue returns a copy of the active queue order.
func (p *Player) Queue() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.queue.items)
}

// AddToQueue appends t to the queue. While shuffled it is also appended to
// the saved original order.
func (p *Player) AddToQueue(t Track) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue.items = append(p.queue.items, t)
	if p.queue.shuffled {
		p.queue.original = append(p.queue.original, t)
	}
}

// RemoveFromQueue removes the first track with the given ID. The current
// track keeps playing.
func (p *Player) RemoveFromQueue(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue.items = removeFirst(p.queue.items, id)
	if p.queue.shuffled {
		p.queue.original = removeFirst(p.queue.original, id)
	}
}

// ClearQueue empties the queue. The shuffle flag is kept.
func (p *Player) ClearQueue() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.queue.items = nil
	if p.queue.shuffled {
		p.queue.original = nil
	}
}

// SetQueue replaces the queue. While shuffled, tracks becomes the original
// order and the active queue is a fresh permutation of it.
func (p *Player) SetQueue(tracks []Track) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.shuffled {
		p.queue.original = slices.Clone(tracks)
		p.queue.items = p.permute(tracks)
		return
	}
	p.queue.items = slices.Clone(tracks)
}

// ToggleShuffle switches between a random permutation of the queue and the
// order saved when shuffling began.
func (p *Player) ToggleShuffle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queue.shuffled {
		p.queue.items = p.queue.original
		p.queue.original = nil
		p.queue.shuffled = false
		return
	}
	p.queue.original = slices.Clone(p.queue.items)
	p.queue.items = p.permute(p.queue.items)
	p.queue.shuffled = true
}

// permute returns a uniformly shuffled copy (Fisher-Yates).
func (p *Player) permute(tracks []Track) []Track {
	out := slices.Clone(tracks)
	p.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// CycleRepeat advances the repeat mode off -> all -> one -> off.
func (p *Player) CycleRepeat() RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.RepeatMode = p.state.RepeatMode.Next()
	return p.state.RepeatMode
}

// PlayNext plays the track after the current one in queue order. Without a
// current track in the queue it starts at the head. At the end of the queue
// it wraps when repeating all and does nothing otherwise.
func (p *Player) PlayNext(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if next, ok := p.nextLocked(p.state.RepeatMode == RepeatAll); ok {
		p.playTrackLocked(ctx, next)
	}
}

// PlayPrevious restarts the current track when more than the restart
// threshold has elapsed. Otherwise it plays the previous track in queue
// order, wrapping to the tail when repeating all, or restarts the current
// track at the head of the queue.
func (p *Player) PlayPrevious(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.CurrentTime > p.cfg.RestartThreshold {
		p.seekLocked(0)
		return
	}

	idx := -1
	if p.current != nil {
		idx = p.queue.indexOf(p.current.ID)
	}
	switch {
	case idx > 0:
		p.playTrackLocked(ctx, p.queue.items[idx-1])
	case idx == 0 && p.state.RepeatMode == RepeatAll:
		p.playTrackLocked(ctx, p.queue.items[len(p.queue.items)-1])
	case p.current != nil:
		p.seekLocked(0)
	}
}

// HandleTrackEnd advances after the current track finished: repeat one
// replays it, otherwise the next queued track plays, wrapping to the head
// when repeating all. With nothing left playback stops and the current track
// stays selected.
func (p *Player) HandleTrackEnd(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handleTrackEndLocked(ctx)
}

func (p *Player) handleTrackEndLocked(ctx context.Context) {
	if p.state.RepeatMode == RepeatOne && p.current != nil {
		if p.loaded == nil || p.loaded.ID != p.current.ID {
			p.playTrackLocked(ctx, *p.current)
			return
		}
		p.seekLocked(0)
		p.startLocked(ctx, p.current)
		return
	}

	if next, ok := p.nextLocked(p.state.RepeatMode == RepeatAll); ok {
		p.playTrackLocked(ctx, next)
		return
	}

	p.state.IsPlaying = false
	p.bridge.SetPlaying(false)
}

func (p *Player) nextLocked(wrap bool) (Track, bool) {
	items := p.queue.items
	if len(items) == 0 {
		return Track{}, false
	}

	idx := -1
	if p.current != nil {
		idx = p.queue.indexOf(p.current.ID)
	}
	switch {
	case idx+1 < len(items):
		return items[idx+1], true
	case wrap:
		return items[0], true
	default:
		return Track{}, false
	}
}
