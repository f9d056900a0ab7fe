package domain

import (
	"fmt"
	"math/rand"
)

// Word lists for friendly game names, mixing a few themes so generated names
// stay varied in small deployments.
var (
	nameActions = []string{
		"Siege", "Defense", "Quest", "Trial", "Fall", "Reckoning",
		"Incursion", "Blockade", "Extraction", "Breach", "Containment",
		"Battle", "Challenge", "War", "Conquest", "Showdown", "Rumble",
		"Uprising", "Gambit", "Clash", "Tournament", "Race",
	}
	namePrepositions = []string{"of", "at", "for", "on", "in"}
	nameLocations    = []string{
		"Gondor", "the Black Forest", "Dragon's Peak", "Ironhold", "the Whispering Caves",
		"Mars", "Sector 7G", "the Orion Nebula", "Titan Station", "Alpha Centauri",
		"Barcelona", "Madrid", "Seville", "Tokyo", "Cairo", "London", "Moscow",
		"Berlin", "Brazil", "Egypt", "Japan", "New York",
	}
)

// GenerateGameName produces a memorable display name in the form
// "[Action] [Preposition] [Location]", e.g. "Gambit of Tokyo".
func GenerateGameName(rng *rand.Rand) string {
	return fmt.Sprintf("%s %s %s",
		nameActions[rng.Intn(len(nameActions))],
		namePrepositions[rng.Intn(len(namePrepositions))],
		nameLocations[rng.Intn(len(nameLocations))],
	)
}
