package engine

import "go-catan/entities"

// MinLongestRoad 最长道路称号所需的最少道路数
const MinLongestRoad = 5

type roadEdge struct {
	to     int
	edgeID int
}

// LongestRoad returns the length of the longest trail (no edge reused) over the given roads.
// Fewer than MinLongestRoad edges short-circuits to 0.
func LongestRoad(roads []entities.Road) int {
	if len(roads) < MinLongestRoad {
		return 0
	}

	adj := make(map[int][]roadEdge)
	for _, r := range roads {
		adj[r.FromTown] = append(adj[r.FromTown], roadEdge{to: r.ToTown, edgeID: r.ID})
		adj[r.ToTown] = append(adj[r.ToTown], roadEdge{to: r.FromTown, edgeID: r.ID})
	}

	best := 0
	used := make(map[int]bool, len(roads))
	var dfs func(node, length int)
	dfs = func(node, length int) {
		if length > best {
			best = length
		}
		for _, e := range adj[node] {
			if used[e.edgeID] {
				continue
			}
			used[e.edgeID] = true
			dfs(e.to, length+1)
			used[e.edgeID] = false
		}
	}

	for start := range adj {
		dfs(start, 0)
		if best == len(roads) {
			break
		}
	}
	return best
}

// RoadsOf filters the roads owned by playerID.
func RoadsOf(roads []entities.Road, playerID int64) []entities.Road {
	var out []entities.Road
	for _, r := range roads {
		if r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	return out
}

// AwardLongestRoad decides whether candidate takes the title. Only a strictly longer road than the
// current record transfers it; the returned session carries the new holder and length.
func AwardLongestRoad(s entities.GameSession, playerID int64, candidate int) (entities.GameSession, bool) {
	if candidate < MinLongestRoad || candidate <= s.LongestRoadLength {
		return s, false
	}
	s.LongestRoadLength = candidate
	if s.LongestRoadHolder == playerID {
		return s, false
	}
	s.LongestRoadHolder = playerID
	return s, true
}
