// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

// OptionResult is one option's tally.
type OptionResult struct {
	Option string `json:"option"`
	Votes  uint32 `json:"votes"`
}

// Results is the read-only tally of a poll, options in creation order.
type Results struct {
	Question   string         `json:"question"`
	TotalVotes uint32         `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}

// Winner lists every option holding the top count. Ties yield several
// winners; a poll without votes yields all options with MaxVotes 0.
type Winner struct {
	WinningOptions []string `json:"winning_options"`
	MaxVotes       uint32   `json:"max_votes"`
}

func ComputeResults(p *Poll) Results {
	r := Results{
		Question: p.Question,
		Options:  make([]OptionResult, len(p.Options)),
	}
	for i, opt := range p.Options {
		r.Options[i] = OptionResult{Option: opt, Votes: p.Votes[i]}
		r.TotalVotes += p.Votes[i]
	}
	return r
}

func ComputeWinner(p *Poll) Winner {
	var max uint32
	for _, v := range p.Votes {
		if v > max {
			max = v
		}
	}

	w := Winner{MaxVotes: max, WinningOptions: []string{}}
	for i, v := range p.Votes {
		if v == max {
			w.WinningOptions = append(w.WinningOptions, p.Options[i])
		}
	}
	return w
}
