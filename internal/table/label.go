package table

import "fmt"

const (
	ranks = "23456789TJQKA"
	suits = "cdhs"
)

// Label names card index i of a deck of n cards.
//
// A 52 card deck uses poker names such as "Ah" or "Tc", ordered by suit then
// rank. Other decks use "#i".
func Label(n, i int) string {
	if n == len(ranks)*len(suits) && i >= 0 && i < n {
		return string([]byte{ranks[i%len(ranks)], suits[i/len(ranks)]})
	}
	return fmt.Sprintf("#%d", i)
}

func labels(n int, indices []int) []string {
	out := make([]string, len(indices))
	for i, index := range indices {
		out[i] = Label(n, index)
	}
	return out
}
