package provider

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var (
	adjectives = []string{"quick", "bold", "clever", "smart", "fast", "strong", "brave", "calm", "deep", "fair"}
	nouns      = []string{"fox", "wolf", "eagle", "lion", "tiger", "bear", "hawk", "shark", "owl", "falcon"}
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// PasswordLength is the length of generated provider credentials.
const PasswordLength = 12

// Generator produces usernames, passwords and random choices.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator returns a Generator seeded with seed, or with the clock when seed is 0.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Username joins an adjective, a noun and a 4-digit number: "brave_owl_4821".
func (g *Generator) Username() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	adjective := adjectives[g.rnd.Intn(len(adjectives))]
	noun := nouns[g.rnd.Intn(len(nouns))]
	number := 1000 + g.rnd.Intn(9000)
	return strings.ToLower(fmt.Sprintf("%s_%s_%d", adjective, noun, number))
}

// Password returns PasswordLength characters drawn uniformly from [A-Za-z0-9].
func (g *Generator) Password() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	b := make([]byte, PasswordLength)
	for i := range b {
		b[i] = passwordAlphabet[g.rnd.Intn(len(passwordAlphabet))]
	}
	return string(b)
}

// Pick returns a random element of items, or "" for an empty slice.
func (g *Generator) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return items[g.rnd.Intn(len(items))]
}

// Shuffle randomizes the order of n elements using swap.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rnd.Shuffle(n, swap)
}
