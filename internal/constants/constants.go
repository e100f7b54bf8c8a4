package constants

import "time"

const (
	PlayerLookupInterval = 6 * time.Second
	MatchFetchDelay      = 50 * time.Millisecond
	RecentGamesTTL       = 1 * time.Hour
	RecentGamesLimit     = 20
	CalendarUTCOffset    = -3 * 60 * 60
)

const (
	ExternalAPITimeout = 15 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	SyncLockTTL        = 2 * time.Hour
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	PubgAcceptHeader = "application/vnd.api+json"
	DefaultSyncTime  = "02:00"
)
