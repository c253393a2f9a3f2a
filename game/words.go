package game

import "math/rand"

// The fixed word list. Kept in code so a fresh deploy has words without a
// seed job; drawn from uniformly at round start.
var wordsList = []string{
	"cat", "dog", "house", "tree", "car", "sun", "moon", "star", "fish",
	"bird", "apple", "banana", "pizza", "guitar", "piano", "train", "plane",
	"boat", "bridge", "castle", "dragon", "robot", "rocket", "clock",
	"ladder", "candle", "mirror", "camera", "pencil", "scissors", "umbrella",
	"elephant", "giraffe", "penguin", "butterfly", "spider", "snowman",
	"rainbow", "volcano", "island", "mountain", "lighthouse", "windmill",
	"telescope", "helicopter", "submarine", "skeleton", "wizard", "pirate",
	"mermaid",
}

// WordBank implements RandomWordsGenerator over the fixed list.
type WordBank struct {
	words []string
}

func NewWordBank() *WordBank {
	return &WordBank{words: wordsList}
}

func (w *WordBank) Generate(count int) []string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, w.words[rand.Intn(len(w.words))])
	}
	return out
}
