package brackets

import "fmt"

const GroupStageRoundName = "Group Stage"

// RoundName names a knockout round by how many matches it holds.
func RoundName(matchCount int) string {
	switch matchCount {
	case 1:
		return "Final"
	case 2:
		return "Semifinals"
	case 4:
		return "Quarterfinals"
	default:
		return fmt.Sprintf("Round of %d", matchCount*2)
	}
}
