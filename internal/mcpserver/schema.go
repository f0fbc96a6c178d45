package mcpserver

const (
	defaultPageLimit    = 50
	maxPageLimit        = 200
	maxLeaderboardLimit = 100
	defaultBattleLimit  = 20
)

func clampPagination(limit, offset, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func isAllowedBattleType(v string) bool {
	return v == "speed" || v == "gas" || v == "reliability" || v == "slippage"
}

