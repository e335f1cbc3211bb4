package theoraclip

import "testing"

func TestRingFrameQueueAdmissionAndReuse(t *testing.T) {
	q := newRingFrameQueue(2)

	f1 := q.RequestEmpty()
	if f1 == nil {
		t.Fatal("expected a free slot")
	}
	f1.Number = 1
	q.Publish(f1)

	f2 := q.RequestEmpty()
	if f2 == nil {
		t.Fatal("expected a second free slot")
	}
	f2.Number = 2
	q.Publish(f2)

	// Both slots are now in use; the ring has wrapped back to slot 0, which
	// is still InUse, so the queue should report saturation.
	if got := q.RequestEmpty(); got != nil {
		t.Fatalf("expected nil on a saturated queue, got frame %d", got.Number)
	}

	q.ReleaseEmpty(f1)
	if f1.InUse {
		t.Fatal("ReleaseEmpty should clear InUse")
	}
}

func TestRingFrameQueueResetAllClearsEveryoneAndBumpsIteration(t *testing.T) {
	q := newRingFrameQueue(3)
	for i := 0; i < 3; i++ {
		f := q.RequestEmpty()
		if f == nil {
			t.Fatalf("slot %d should have been free", i)
		}
		q.Publish(f)
	}

	q.ResetAll()

	for i, f := range q.slots {
		if f.InUse {
			t.Fatalf("slot %d still InUse after ResetAll", i)
		}
	}

	next := q.RequestEmpty()
	if next == nil {
		t.Fatal("expected a free slot after ResetAll")
	}
	if next.Iteration != 1 {
		t.Fatalf("slot requested after ResetAll has iteration %d, want 1", next.Iteration)
	}
}

func TestRingFrameQueueCapacity(t *testing.T) {
	if got := newRingFrameQueue(5).Capacity(); got != 5 {
		t.Fatalf("Capacity() = %d, want 5", got)
	}
	if got := newRingFrameQueue(0).Capacity(); got != 4 {
		t.Fatalf("Capacity() with 0 requested = %d, want default 4", got)
	}
}
