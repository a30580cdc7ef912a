package domain

import (
	"context"
	"sync"
	"testing"
	"time"
)

func queueTrack(title string) *Track {
	return &Track{StreamURL: "https://cdn.example/" + title, Title: title}
}

func TestTrackQueueFIFO(t *testing.T) {
	q := NewTrackQueue()
	q.Append(queueTrack("a"), queueTrack("b"))
	q.Append(queueTrack("c"))

	want := []string{"a", "b", "c"}
	for _, title := range want {
		got, ok := q.TryNext()
		if !ok {
			t.Fatalf("expected track %q, queue was empty", title)
		}
		if got.Title != title {
			t.Errorf("expected %q, got %q", title, got.Title)
		}
	}

	if _, ok := q.TryNext(); ok {
		t.Error("expected empty queue")
	}
}

func TestTrackQueueNextBlocksUntilAppend(t *testing.T) {
	q := NewTrackQueue()

	done := make(chan *Track, 1)
	go func() {
		track, err := q.Next(context.Background())
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- track
	}()

	// Give the consumer a moment to block.
	time.Sleep(20 * time.Millisecond)
	q.Append(queueTrack("late"))

	select {
	case track := <-done:
		if track.Title != "late" {
			t.Errorf("expected %q, got %q", "late", track.Title)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer never woke up")
	}
}

func TestTrackQueueNextHonorsContext(t *testing.T) {
	q := NewTrackQueue()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Next(ctx); err == nil {
		t.Error("expected context error")
	}
}

func TestTrackQueueConcurrentProducers(t *testing.T) {
	q := NewTrackQueue()

	const producers = 8
	const perProducer = 25

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				q.Append(queueTrack("x"))
			}
		}()
	}
	wg.Wait()

	if got := q.Len(); got != producers*perProducer {
		t.Errorf("expected %d tracks, got %d", producers*perProducer, got)
	}
}

func TestTrackQueueDrain(t *testing.T) {
	q := NewTrackQueue()
	q.Append(queueTrack("a"), queueTrack("b"), queueTrack("c"))

	if n := q.Drain(); n != 3 {
		t.Errorf("expected 3 drained, got %d", n)
	}
	if q.Len() != 0 {
		t.Error("expected empty queue after drain")
	}

	// A fresh enqueue after drain starts cleanly.
	q.Append(queueTrack("d"))
	track, ok := q.TryNext()
	if !ok || track.Title != "d" {
		t.Errorf("expected %q after drain, got %+v", "d", track)
	}
}

func TestTrackQueueSnapshotIsCopy(t *testing.T) {
	q := NewTrackQueue()
	q.Append(queueTrack("a"), queueTrack("b"))

	snap := q.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(snap))
	}
	snap[0] = queueTrack("mutated")

	track, _ := q.TryNext()
	if track.Title != "a" {
		t.Error("snapshot mutation leaked into queue")
	}
}
