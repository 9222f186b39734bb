// Package nickname generates readable placeholder nicknames for accounts
// registered without one.
package nickname

import (
	"fmt"
	"math/rand/v2"
)

var adjectives = []string{
	"amber", "brisk", "calm", "clever", "daring", "eager", "gentle",
	"keen", "lively", "mellow", "nimble", "quiet", "rapid", "sly",
	"solar", "stout", "swift", "vivid", "wise", "zesty",
}

var animals = []string{
	"badger", "bison", "crane", "falcon", "gecko", "heron", "ibex",
	"jackal", "lemur", "lynx", "marten", "otter", "panda", "puffin",
	"raven", "stoat", "tapir", "viper", "walrus", "wren",
}

// Generate returns a random nickname of the form adjective_animal_NNN.
// Uniqueness is not guaranteed here; callers retry on collision since the
// store enforces the unique constraint.
func Generate() string {
	return fmt.Sprintf("%s_%s_%d",
		adjectives[rand.IntN(len(adjectives))],
		animals[rand.IntN(len(animals))],
		rand.IntN(1000),
	)
}
