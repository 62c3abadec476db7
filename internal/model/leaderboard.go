package model

type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"user_id"`
	Value            int64  `json:"value"`
	TiedWithPrevious bool   `json:"tied_with_previous"`
}

type GetLeaderboardRequest struct {
	Category string `json:"category"`
	Scope    string `json:"scope"`
	Period   string `json:"period"`
	Limit    int    `json:"limit"`
	Cursor   string `json:"cursor"`
}

type GetLeaderboardResponse struct {
	Entries    []LeaderboardEntry `json:"entries"`
	MyEntry    *LeaderboardEntry  `json:"my_entry,omitempty"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type GetMyRankRequest struct {
	Category string `json:"category"`
	Period   string `json:"period"`
}

type GetMyRankResponse struct {
	Entry *LeaderboardEntry `json:"entry,omitempty"`
}

type CategoryRank struct {
	Category string `json:"category"`
	Rank     int    `json:"rank"`
	Value    int64  `json:"value"`
}

type GetMyAllCategoryRanksRequest struct {
	Period string `json:"period"`
}

type GetMyAllCategoryRanksResponse struct {
	Ranks []CategoryRank `json:"ranks"`
}

type ResetLeaderboardRequest struct {
	Category string `json:"category"`
	Scope    string `json:"scope"`
	Period   string `json:"period"`
}

type ResetLeaderboardResponse struct {
	SnapshotID string `json:"snapshot_id"`
	Entries    int    `json:"entries"`
	Rewarded   int    `json:"rewarded"`
}
