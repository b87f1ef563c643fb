package achievements

// Achievement is the display form of an ID.
type Achievement struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog lists every achievement in unlock-check order.
var Catalog = []Achievement{
	{FirstWin, "First Victory", "Win your first game."},
	{Streak3, "On a Roll", "Win 3 games in a row."},
	{Streak5, "Unstoppable", "Win 5 games in a row."},
	{QuickSolver, "Against the Clock", "Solve the puzzle in under 30 seconds."},
	{PerfectGuess, "Lucky Second", "Guess the word on your second try."},
	{FlawlessGame, "Flawless", "Win without a single letter marked absent."},
}

// Details maps ids to catalog entries, skipping unknown ids.
func Details(ids []ID) []Achievement {
	out := make([]Achievement, 0, len(ids))
	for _, id := range ids {
		for _, a := range Catalog {
			if a.ID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
