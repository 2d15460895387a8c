// This file is part of m33mu-go.
//
// m33mu-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// m33mu-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with m33mu-go.  If not, see <https://www.gnu.org/licenses/>.

package runloop

// schedEntry is one pending callback in the Scheduler's due-time-ordered
// list, per spec.md §4.6 ("a time-sorted singly-linked list of {due_cycle,
// callback, opaque}").
type schedEntry struct {
	due  uint64
	fn   func()
	next *schedEntry
}

// Scheduler paces peripheral ticks off the run loop's own cycle counter
// rather than a wall-clock timer, so ticks stay deterministic across runs.
type Scheduler struct {
	head *schedEntry
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() *Scheduler { return &Scheduler{} }

// Schedule inserts fn to run once the cycle counter reaches due, keeping
// the list sorted by due time so RunDue only ever has to look at the
// head.
func (s *Scheduler) Schedule(due uint64, fn func()) {
	e := &schedEntry{due: due, fn: fn}
	if s.head == nil || due < s.head.due {
		e.next = s.head
		s.head = e
		return
	}
	cur := s.head
	for cur.next != nil && cur.next.due <= due {
		cur = cur.next
	}
	e.next = cur.next
	cur.next = e
}

// RunDue pops and invokes every entry whose due time has arrived.
// Callbacks may call Schedule again to reinsert themselves for the next
// tick; since Schedule inserts ahead of any later entry at the same due
// time, a self-rescheduling callback never re-fires within the same
// RunDue pass unless it schedules strictly at or before now.
func (s *Scheduler) RunDue(now uint64) {
	for s.head != nil && s.head.due <= now {
		e := s.head
		s.head = e.next
		e.fn()
	}
}

// Pending reports whether any callback is still outstanding, used by
// tests to confirm a run drained everything it scheduled.
func (s *Scheduler) Pending() bool { return s.head != nil }
