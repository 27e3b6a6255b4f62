package room

import "hash/fnv"

// Scene clue tables, indexed by a hash of the scene photo so the clue
// is stable for a given photo.
var (
	cluesEN = []string{
		"Something red near a window",
		"A round object on a flat surface",
		"Where the light comes in",
		"The tallest thing in the room",
		"Something that makes a sound",
		"A place where people sit",
	}
	cluesJP = []string{
		"窓の近くにある赤いもの",
		"平らな面の上にある丸いもの",
		"光が差し込むところ",
		"部屋でいちばん高いもの",
		"音が出るもの",
		"人が座る場所",
	}
)

// photoSimilarity computes a similarity percentage between the scene
// photo and a guess. Real similarity scoring lives in the production
// backend; the dev server only needs a stable, repeatable number, so
// it hashes both images together and maps the digest onto [40, 100).
func photoSimilarity(scene, guess []byte) float64 {
	h := fnv.New64a()
	_, _ = h.Write(scene)
	_, _ = h.Write(guess)
	return 40 + float64(h.Sum64()%6000)/100
}

// bestSimilarity scores each of a player's shots and keeps the best
func bestSimilarity(scene []byte, shots [][]byte) float64 {
	var best float64
	for _, shot := range shots {
		if sim := photoSimilarity(scene, shot); sim > best {
			best = sim
		}
	}
	return best
}

// describeScene picks the clue for a scene photo in the given language
func describeScene(scene []byte, lang string) string {
	h := fnv.New32a()
	_, _ = h.Write(scene)

	clues := cluesEN
	if lang == "jp" {
		clues = cluesJP
	}
	return clues[h.Sum32()%uint32(len(clues))]
}
