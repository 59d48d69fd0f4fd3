package models

import (
	"fmt"
	"testing"
)

func testBox(n int) *Mailbox {
	box := &Mailbox{Address: "test@example.com", Owner: 1}
	// Prepend in reverse so Messages[i].Subject == "msg-i"
	for i := n - 1; i >= 0; i-- {
		box.Prepend(Message{Subject: fmt.Sprintf("msg-%d", i)})
	}
	return box
}

func TestPrependKeepsNewestFirst(t *testing.T) {
	box := &Mailbox{}
	box.Prepend(Message{Subject: "old"})
	box.Prepend(Message{Subject: "new"})

	if box.Messages[0].Subject != "new" {
		t.Errorf("Messages[0].Subject = %q, want %q", box.Messages[0].Subject, "new")
	}
	if box.Messages[1].Subject != "old" {
		t.Errorf("Messages[1].Subject = %q, want %q", box.Messages[1].Subject, "old")
	}
}

func TestRemoveAtShiftsLaterIndices(t *testing.T) {
	const n = 7
	const removed = 2
	box := testBox(n)

	if !box.RemoveAt(removed) {
		t.Fatal("RemoveAt returned false for a valid index")
	}
	if len(box.Messages) != n-1 {
		t.Fatalf("len = %d, want %d", len(box.Messages), n-1)
	}

	// Everything before the removed index is untouched, everything
	// after it moved one position down
	for i := 0; i < removed; i++ {
		if got, want := box.Messages[i].Subject, fmt.Sprintf("msg-%d", i); got != want {
			t.Errorf("Messages[%d].Subject = %q, want %q", i, got, want)
		}
	}
	for i := removed; i < n-1; i++ {
		if got, want := box.Messages[i].Subject, fmt.Sprintf("msg-%d", i+1); got != want {
			t.Errorf("Messages[%d].Subject = %q, want %q", i, got, want)
		}
	}
}

func TestRemoveAtOutOfBounds(t *testing.T) {
	box := testBox(3)
	for _, idx := range []int{-1, 3, 100} {
		if box.RemoveAt(idx) {
			t.Errorf("RemoveAt(%d) = true, want false", idx)
		}
	}
	if len(box.Messages) != 3 {
		t.Errorf("out-of-bounds RemoveAt mutated the list, len = %d", len(box.Messages))
	}
}

func TestAtResolvesStableIndex(t *testing.T) {
	box := testBox(5)

	// Toggling the read flag must not move the message
	msg := box.At(3)
	if msg == nil {
		t.Fatal("At(3) = nil")
	}
	msg.IsRead = true

	again := box.At(3)
	if again.Subject != "msg-3" {
		t.Errorf("At(3).Subject = %q after mark-read, want %q", again.Subject, "msg-3")
	}
	if !again.IsRead {
		t.Error("read flag did not persist through At")
	}

	if box.At(5) != nil || box.At(-1) != nil {
		t.Error("out-of-bounds At should return nil")
	}
}

func TestUnreadCount(t *testing.T) {
	box := testBox(4)
	box.Messages[1].IsRead = true
	box.Messages[3].IsRead = true

	if got := box.Unread(); got != 2 {
		t.Errorf("Unread() = %d, want 2", got)
	}
}

func TestUserEmailListOps(t *testing.T) {
	u := &User{ChatID: 42, CreatedEmails: []string{"a@x", "b@x", "c@x"}}

	if !u.OwnsEmail("b@x") {
		t.Error("OwnsEmail(b@x) = false")
	}
	if u.OwnsEmail("z@x") {
		t.Error("OwnsEmail(z@x) = true")
	}

	u.RemoveEmail("b@x")
	if u.OwnsEmail("b@x") {
		t.Error("b@x still owned after RemoveEmail")
	}
	if len(u.CreatedEmails) != 2 || u.CreatedEmails[0] != "a@x" || u.CreatedEmails[1] != "c@x" {
		t.Errorf("CreatedEmails = %v, want [a@x c@x]", u.CreatedEmails)
	}
}
