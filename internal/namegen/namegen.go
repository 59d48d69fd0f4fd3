// Package namegen generates random local parts for disposable
// addresses, shaped like "brisk-otter42" so they are memorable enough
// to read aloud but unlikely to collide.
package namegen

import (
	"fmt"
	"math/rand"
)

var adjectives = []string{
	"amber", "brisk", "calm", "dusty", "eager", "faint", "gentle",
	"hazy", "icy", "jolly", "keen", "lucky", "mellow", "neat",
	"odd", "pale", "quick", "rusty", "shy", "tidy", "vivid",
	"warm", "young", "zesty", "bold", "crisp", "dim", "fresh",
}

var nouns = []string{
	"otter", "falcon", "maple", "river", "comet", "badger", "cedar",
	"dune", "ember", "fjord", "grove", "harbor", "island", "jasper",
	"kite", "lagoon", "meadow", "nettle", "onyx", "pebble", "quartz",
	"reef", "sparrow", "tundra", "umber", "vale", "willow", "zephyr",
}

// Random returns a random local part matching [a-z0-9.-]+
func Random() string {
	adj := adjectives[rand.Intn(len(adjectives))]
	noun := nouns[rand.Intn(len(nouns))]
	return fmt.Sprintf("%s-%s%02d", adj, noun, rand.Intn(100))
}
