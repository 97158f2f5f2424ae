package sqlc

import (
	"context"
	"net"

	"github.com/sqlc-dev/pqtype"
)

// AnalyticsManager records per-server statistics. Every call is bounded by
// QuerierCtxTimeout on top of the caller's context.
type AnalyticsManager struct {
	queries  Querier
	serverIp pqtype.Inet
}

func NewAnalyticsManager(queries Querier, serverIpNet net.IPNet) *AnalyticsManager {
	return &AnalyticsManager{
		queries:  queries,
		serverIp: pqtype.Inet{IPNet: serverIpNet, Valid: true},
	}
}

func (a *AnalyticsManager) ServerIp() pqtype.Inet {
	return a.serverIp
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.IncrementGamesCreatedCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.GetGamesCreatedCount(ctx, a.serverIp)
}

type MatchResultParams struct {
	GameUuid                 string
	BoardSize                int
	Winner                   string
	PlayerShots              int
	ComputerShots            int
	WinnerRemainingFragments int
}

func (a *AnalyticsManager) RecordMatchResult(ctx context.Context, params MatchResultParams) error {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.InsertMatchResult(ctx, InsertMatchResultParams{
		GameUuid:                 params.GameUuid,
		ServerIp:                 a.serverIp,
		BoardSize:                int16(params.BoardSize),
		Winner:                   params.Winner,
		PlayerShots:              int32(params.PlayerShots),
		ComputerShots:            int32(params.ComputerShots),
		WinnerRemainingFragments: int32(params.WinnerRemainingFragments),
	})
}

func (a *AnalyticsManager) CountMatchesWonBy(ctx context.Context, winner string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, QuerierCtxTimeout)
	defer cancel()
	return a.queries.CountMatchesWonBy(ctx, winner)
}
