package player

import "sync"

// AnalysisLoop samples the analyser once per display frame while audio is
// playing and publishes the byte spectrum.
//
// The loop stops rescheduling itself as soon as a frame finds playback
// stopped, so it costs nothing while idle. Start revives it.
type AnalysisLoop struct {
	mu sync.Mutex

	scheduler FrameScheduler
	playing   func() bool
	read      func(dst []byte)

	buf     []byte // reused for every read
	latest  []byte
	running bool
	kicked  bool // Start was called while a frame was in flight
	frames  uint64

	subs   map[int]chan []byte
	nextID int
}

// NewAnalysisLoop creates a loop publishing bins bytes per frame. playing
// decides whether to continue; read fills the buffer from the analyser.
func NewAnalysisLoop(s FrameScheduler, bins int, playing func() bool, read func(dst []byte)) *AnalysisLoop {
	return &AnalysisLoop{
		scheduler: s,
		playing:   playing,
		read:      read,
		buf:       make([]byte, bins),
		latest:    make([]byte, bins),
		subs:      make(map[int]chan []byte),
	}
}

// Start schedules the first frame. It is a no-op while the loop runs.
func (l *AnalysisLoop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		l.kicked = true
		return
	}
	l.running = true
	l.scheduler.RequestFrame(l.tick)
}

// Running reports whether a frame is scheduled.
func (l *AnalysisLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Frames returns the number of published frames.
func (l *AnalysisLoop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Data returns a copy of the latest published spectrum. It is all zeros
// before the first frame.
func (l *AnalysisLoop) Data() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]byte, len(l.latest))
	copy(out, l.latest)
	return out
}

// Subscribe returns a channel receiving every published spectrum. Frames are
// dropped for a subscriber whose buffer is full. Received slices are shared
// between subscribers and must not be modified. The returned function
// unsubscribes and closes the channel.
func (l *AnalysisLoop) Subscribe(buffer int) (<-chan []byte, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan []byte, buffer)

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}

func (l *AnalysisLoop) tick() {
	if !l.playing() {
		l.mu.Lock()
		kicked := l.kicked
		l.kicked = false
		l.running = kicked
		l.mu.Unlock()
		if kicked {
			l.scheduler.RequestFrame(l.tick)
		}
		return
	}

	l.read(l.buf)

	frame := make([]byte, len(l.buf))
	copy(frame, l.buf)

	l.mu.Lock()
	copy(l.latest, l.buf)
	l.frames++
	l.kicked = false
	for _, ch := range l.subs {
		select {
		case ch <- frame:
		default:
		}
	}
	l.mu.Unlock()

	l.scheduler.RequestFrame(l.tick)
}
