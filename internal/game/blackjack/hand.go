// Package blackjack implements the chat-driven card game: rolls 1-10 are
// drawn cards, aces re-score to 11 when that keeps the total at or under 21,
// and a pinned dealer plays last.
package blackjack

// Hand holds one participant's card state for a round. Splitting creates a
// second sub-hand; the cursor tracks which sub-hand the next card lands in.
type Hand struct {
	key     string
	display string

	hands    [][]int
	current  int
	finished map[int]bool
}

// NewHand creates an empty hand for a participant.
func NewHand(key, display string) *Hand {
	return &Hand{
		key:      key,
		display:  display,
		hands:    [][]int{{}},
		finished: make(map[int]bool),
	}
}

// Key returns the owner's identity key.
func (h *Hand) Key() string { return h.key }

// Display returns the owner's display name.
func (h *Hand) Display() string { return h.display }

// SetDisplay updates the display name to the most recently seen raw form.
func (h *Hand) SetDisplay(display string) {
	if display != "" {
		h.display = display
	}
}

// Hands returns the sub-hands.
func (h *Hand) Hands() [][]int { return h.hands }

// CurrentIndex returns the cursor position.
func (h *Hand) CurrentIndex() int { return h.current }

// AddCard appends a card value to the current sub-hand.
func (h *Hand) AddCard(value int) {
	h.hands[h.current] = append(h.hands[h.current], value)
}

// scoreCards sums card values, re-scoring aces (value 1) as 11 greedily,
// ace by ace, while the total stays at or under 21.
func scoreCards(cards []int) int {
	sum := 0
	aces := 0
	for _, c := range cards {
		sum += c
		if c == 1 {
			aces++
		}
	}
	for aces > 0 && sum+10 <= 21 {
		sum += 10
		aces--
	}
	return sum
}

// Score returns the score of the sub-hand at index.
func (h *Hand) Score(index int) int {
	if index < 0 || index >= len(h.hands) {
		return 0
	}
	return scoreCards(h.hands[index])
}

// CurrentScore returns the score of the sub-hand under the cursor.
func (h *Hand) CurrentScore() int { return h.Score(h.current) }

// Busted reports whether the current sub-hand is over 21.
func (h *Hand) Busted() bool { return h.CurrentScore() > 21 }

// Finish marks the current sub-hand done (stand, bust or 21).
func (h *Hand) Finish() {
	h.finished[h.current] = true
}

// Done reports whether the sub-hand at index is finished.
func (h *Hand) Done(index int) bool { return h.finished[index] }

// AllDone reports whether every sub-hand is finished.
func (h *Hand) AllDone() bool {
	for i := range h.hands {
		if !h.finished[i] {
			return false
		}
	}
	return true
}

// CanSplit reports whether the current sub-hand is a two-card pair.
func (h *Hand) CanSplit() bool {
	cards := h.hands[h.current]
	return len(cards) == 2 && cards[0] == cards[1]
}

// Split turns the current two-card pair into two single-card sub-hands and
// reopens the current sub-hand for play. Returns false if the hand cannot
// be split.
func (h *Hand) Split() bool {
	if !h.CanSplit() {
		return false
	}

	cards := h.hands[h.current]
	moved := cards[1]
	h.hands[h.current] = cards[:1]

	// Insert the new sub-hand right after the cursor, shifting the finished
	// markers of everything behind it.
	h.hands = append(h.hands, nil)
	copy(h.hands[h.current+2:], h.hands[h.current+1:])
	h.hands[h.current+1] = []int{moved}

	shifted := make(map[int]bool, len(h.finished))
	for i, done := range h.finished {
		if i > h.current {
			shifted[i+1] = done
		} else {
			shifted[i] = done
		}
	}
	delete(shifted, h.current)
	h.finished = shifted

	return true
}

// Advance moves the cursor to the next unfinished sub-hand after the current
// one. Returns false when none exists.
func (h *Hand) Advance() bool {
	for i := h.current + 1; i < len(h.hands); i++ {
		if !h.finished[i] {
			h.current = i
			return true
		}
	}
	return false
}

// BestScore returns the highest not-busted sub-hand score, or 0 if every
// sub-hand busted.
func (h *Hand) BestScore() int {
	best := 0
	for i := range h.hands {
		if s := h.Score(i); s <= 21 && s > best {
			best = s
		}
	}
	return best
}
