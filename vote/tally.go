// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import "github.com/danielhkuo/venue-vote/models"

// Tally counts votes per venue and marks the winner.
//
// A venue wins only if it alone holds the highest count. Any tie, including
// two or more venues at zero votes, leaves every winner flag false. A single
// venue with zero votes still wins. Votes for venues not in the list count
// for nothing.
func Tally(venues []models.Venue, participants []models.Participant) []models.TalliedVenue {
	counts := make(map[models.VenueID]int, len(venues))
	for _, p := range participants {
		if p.VotedFor != nil {
			counts[*p.VotedFor]++
		}
	}

	tallied := make([]models.TalliedVenue, len(venues))
	maxVotes := 0
	for i, v := range venues {
		tallied[i] = models.TalliedVenue{Venue: v, Votes: counts[v.ID]}
		if tallied[i].Votes > maxVotes {
			maxVotes = tallied[i].Votes
		}
	}

	winners := 0
	for i := range tallied {
		if tallied[i].Votes == maxVotes {
			tallied[i].Winner = true
			winners++
		}
	}

	// More than one venue at the max is a tie and nobody wins.
	if winners > 1 {
		for i := range tallied {
			tallied[i].Winner = false
		}
	}

	return tallied
}
