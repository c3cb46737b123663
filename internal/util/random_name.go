package util

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var adjectives = []string{
	"Sly", "Bold", "Quiet", "Lucky", "Stubborn", "Patient", "Cunning", "Brave", "Calm", "Restless", "Grumpy",
	"Cheerful", "Silent", "Clever", "Wise", "Young", "Old", "Swift", "Steady", "Wild", "Gentle", "Proud",
}

var nouns = []string{
	"Gaucho", "Puma", "Condor", "Carpincho", "Guanaco", "Hornero", "Yaguarete", "Vicuna", "Tatu", "Nandu",
	"Zorro", "Lechuza", "Tero", "Benteveo", "Pejerrey", "Dorado", "Chaja", "Coati", "Mara", "Llama",
}

var (
	random   = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec
	randomMu sync.Mutex
)

// GetRandomName returns a random name by combining an adjective with a noun
// It is used for seats that join without a display name.
func GetRandomName() string {
	randomMu.Lock()
	defer randomMu.Unlock()

	return fmt.Sprintf("%s %s", adjectives[random.Intn(len(adjectives))], nouns[random.Intn(len(nouns))])
}
