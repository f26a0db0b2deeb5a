package model

// Rates and averages are nil when their denominator is zero.
// Percentages are in [0,100] and are not rounded.

type Summary struct {
	NoData        bool     `json:"noData"`
	Total         int64    `json:"total"`
	Wins          int64    `json:"wins"`
	Losses        int64    `json:"losses"`
	WinRate       *float64 `json:"winRate"`
	FirstGames    int64    `json:"firstGames"`
	FirstWins     int64    `json:"firstWins"`
	FirstWinRate  *float64 `json:"firstWinRate"`
	SecondGames   int64    `json:"secondGames"`
	SecondWins    int64    `json:"secondWins"`
	SecondWinRate *float64 `json:"secondWinRate"`
	AvgWinTurn    *float64 `json:"avgWinTurn"`
	AvgLossTurn   *float64 `json:"avgLossTurn"`
}

type DeckRow struct {
	Deck              string   `json:"deck"`
	Appearances       int64    `json:"appearances"`
	FirstAppearances  int64    `json:"firstAppearances"`
	Wins              int64    `json:"wins"`
	Losses            int64    `json:"losses"`
	WinRate           *float64 `json:"winRate"`
	FirstWinRate      *float64 `json:"firstWinRate"`
	SecondWinRate     *float64 `json:"secondWinRate"`
	AvgMatchupWinRate *float64 `json:"avgMatchupWinRate"`
	OpponentsFaced    int      `json:"opponentsFaced"`
}

type DeckReport struct {
	NoData bool      `json:"noData"`
	Rows   []DeckRow `json:"rows"`
}

type TrendRow struct {
	OpponentDeck  string   `json:"opponentDeck"`
	Encounters    int64    `json:"encounters"`
	EncounterRate *float64 `json:"encounterRate"`
	Wins          int64    `json:"wins"`
	Losses        int64    `json:"losses"`
	WinRate       *float64 `json:"winRate"`
	AvgFinishTurn *float64 `json:"avgFinishTurn,omitempty"`
}

type TrendReport struct {
	NoData bool       `json:"noData"`
	Total  int64      `json:"total"`
	Rows   []TrendRow `json:"rows"`
}

type MatchupRow struct {
	OpponentDeck     string   `json:"opponentDeck"`
	OpponentDeckType string   `json:"opponentDeckType"`
	AllTypes         bool     `json:"allTypes"`
	Games            int64    `json:"games"`
	FirstGames       int64    `json:"firstGames"`
	Wins             int64    `json:"wins"`
	Losses           int64    `json:"losses"`
	WinRate          *float64 `json:"winRate"`
	AvgWinTurn       *float64 `json:"avgWinTurn"`
	AvgLossTurn      *float64 `json:"avgLossTurn"`
	FirstWinRate     *float64 `json:"firstWinRate"`
	SecondWinRate    *float64 `json:"secondWinRate"`
}

type MatchupReport struct {
	NoData bool         `json:"noData"`
	Deck   string       `json:"deck"`
	Type   string       `json:"type"`
	Rows   []MatchupRow `json:"rows"`
}

// FocusAnalysis bundles every view of one of my decks (optionally one type of it).
type FocusAnalysis struct {
	NoData   bool          `json:"noData"`
	Deck     string        `json:"deck"`
	Type     string        `json:"type"`
	Summary  Summary       `json:"summary"`
	Trend    TrendReport   `json:"trend"`
	Matchups MatchupReport `json:"matchups"`
	Memos    []MatchRecord `json:"memos"`
}

type FilterOptions struct {
	Seasons      []string `json:"seasons"`
	Environments []string `json:"environments"`
	Formats      []string `json:"formats"`
	Groups       []string `json:"groups"`
}
