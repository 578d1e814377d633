// Package config provides suihei's configuration. Values are read from
// command-line flags, then SUIHEI_ prefixed environment variables (optionally
// loaded from an env file), then defaults.
package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix                     = "SUIHEI"
	keyPort                       = "PORT"
	keyDevelopment                = "DEVELOPMENT"
	keyDSN                        = "DSN"
	keyRedisAddr                  = "REDIS_ADDR"
	keyRedisPassword              = "REDIS_PASSWORD"
	keyCookieDomain               = "COOKIE_DOMAIN"
	keyCookieSecure               = "COOKIE_SECURE"
	keyCookieSameSite             = "COOKIE_SAMESITE"
	keyCORSOrigins                = "CORS_ORIGINS"
	keySessionActiveExpiration    = "SESSION_ACTIVE_EXPIRATION"
	keySessionAbsoluteExpiration  = "SESSION_ABSOLUTE_EXPIRATION"
	keyTransport                  = "TRANSPORT"
	keyStreamKey                  = "STREAM_KEY"
	keyRouterBuffer               = "ROUTER_BUFFER"
	keyWikiDir                    = "WIKI_DIR"
	keyWikiTTL                    = "WIKI_TTL"
	keyContentSafeCredit          = "CONTENT_SAFE_CREDIT"
	keyMaxPendingAwardApplication = "MAX_PENDING_AWARD_APPLICATIONS"
	keyMaxFutureSchedules         = "MAX_FUTURE_SCHEDULES"
	keyVoteJoinedFor              = "VOTE_JOINED_FOR"
	keyVotePuzzles                = "VOTE_PUZZLES"
	keyVoteQuestions              = "VOTE_QUESTIONS"
	keyDazeSchedule               = "DAZE_SCHEDULE"
)

// Transports over which ChangeEvents are published.
const (
	TransportLocal = "local"
	TransportRedis = "redis"
)

var global *config

func init() {
	c := &config{
		viper: viper.New(),
	}
	c.viper.SetEnvPrefix(envPrefix)
	c.viper.AutomaticEnv()
	c.loadDefaults()
	global = c
}

type config struct {
	viper *viper.Viper
}

func (c *config) loadDefaults() {
	c.viper.SetDefault(keyPort, 8080)
	c.viper.SetDefault(keyDevelopment, false)
	c.viper.SetDefault(keyDSN, "host=localhost user=postgres password=password dbname=postgres port=5432 sslmode=disable TimeZone=UTC")
	c.viper.SetDefault(keyRedisAddr, "redis:6379")
	c.viper.SetDefault(keyRedisPassword, "")
	c.viper.SetDefault(keyCookieDomain, "localhost")
	c.viper.SetDefault(keyCookieSecure, false)
	c.viper.SetDefault(keyCookieSameSite, "lax")
	c.viper.SetDefault(keyCORSOrigins, []string{"http://localhost:3000"})
	c.viper.SetDefault(keySessionActiveExpiration, 48*time.Hour)
	c.viper.SetDefault(keySessionAbsoluteExpiration, 14*24*time.Hour)
	c.viper.SetDefault(keyTransport, TransportLocal)
	c.viper.SetDefault(keyStreamKey, "suihei:change-events")
	c.viper.SetDefault(keyRouterBuffer, 64)
	c.viper.SetDefault(keyWikiDir, "wiki")
	c.viper.SetDefault(keyWikiTTL, 10*time.Minute)
	c.viper.SetDefault(keyContentSafeCredit, 1000)
	c.viper.SetDefault(keyMaxPendingAwardApplication, 2)
	c.viper.SetDefault(keyMaxFutureSchedules, 3)
	c.viper.SetDefault(keyVoteJoinedFor, 14*24*time.Hour)
	c.viper.SetDefault(keyVotePuzzles, 5)
	c.viper.SetDefault(keyVoteQuestions, 50)
	c.viper.SetDefault(keyDazeSchedule, "@hourly")
}

// Load parses args as suihei's command-line flags. When --env-file names a
// file, its variables are loaded into the environment first; variables
// already set in the environment are left untouched.
func Load(args []string) error {
	flags := pflag.NewFlagSet("suihei", pflag.ContinueOnError)
	flags.Int("port", 8080, "port the HTTP server listens on")
	flags.String("dsn", "", "Postgres data source name")
	flags.String("redis-addr", "", "Redis address")
	flags.String("transport", TransportLocal, "change-event transport; local or redis")
	flags.String("env-file", "", "optional file of environment variables to load")
	flags.Bool("development", false, "human-readable debug logging")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("parse flags; error: %w", err)
	}

	if path, _ := flags.GetString("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s; error: %w", path, err)
		}
	}

	bindings := map[string]string{
		keyPort:        "port",
		keyDSN:         "dsn",
		keyRedisAddr:   "redis-addr",
		keyTransport:   "transport",
		keyDevelopment: "development",
	}
	for key, flag := range bindings {
		f := flags.Lookup(flag)
		if !f.Changed {
			continue
		}
		if err := global.viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s; error: %w", flag, err)
		}
	}
	return nil
}

func Port() int {
	return global.viper.GetInt(keyPort)
}

func Development() bool {
	return global.viper.GetBool(keyDevelopment)
}

func DSN() string {
	return global.viper.GetString(keyDSN)
}

func RedisAddr() string {
	return global.viper.GetString(keyRedisAddr)
}

func RedisPassword() string {
	return global.viper.GetString(keyRedisPassword)
}

func CookieDomain() string {
	return global.viper.GetString(keyCookieDomain)
}

func CookieSecure() bool {
	return global.viper.GetBool(keyCookieSecure)
}

func CookieSameSite() http.SameSite {
	sameSiteStr := global.viper.GetString(keyCookieSameSite)

	var sameSite http.SameSite
	switch sameSiteStr {
	case "off":
		sameSite = http.SameSiteDefaultMode
	case "lax":
		sameSite = http.SameSiteLaxMode
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	default:
		panic("unrecognized Same-Site cookie configuration value")
	}

	return sameSite
}

// CORSOrigins are the origins permitted to make credentialed requests.
func CORSOrigins() []string {
	return global.viper.GetStringSlice(keyCORSOrigins)
}

func SessionActiveExpiration() time.Duration {
	return global.viper.GetDuration(keySessionActiveExpiration)
}

func SessionAbsoluteExpiration() time.Duration {
	return global.viper.GetDuration(keySessionAbsoluteExpiration)
}

// Transport is the change-event transport, TransportLocal or TransportRedis.
func Transport() string {
	return global.viper.GetString(keyTransport)
}

// StreamKey is the Redis stream carrying change-events when Transport is
// TransportRedis.
func StreamKey() string {
	return global.viper.GetString(keyStreamKey)
}

func RouterBuffer() int {
	return global.viper.GetInt(keyRouterBuffer)
}

func WikiDir() string {
	return global.viper.GetString(keyWikiDir)
}

func WikiTTL() time.Duration {
	return global.viper.GetDuration(keyWikiTTL)
}

func ContentSafeCredit() int32 {
	return global.viper.GetInt32(keyContentSafeCredit)
}

func MaxPendingAwardApplications() int64 {
	return global.viper.GetInt64(keyMaxPendingAwardApplication)
}

func MaxFutureSchedules() int64 {
	return global.viper.GetInt64(keyMaxFutureSchedules)
}

func VoteJoinedFor() time.Duration {
	return global.viper.GetDuration(keyVoteJoinedFor)
}

func VotePuzzles() int64 {
	return global.viper.GetInt64(keyVotePuzzles)
}

func VoteQuestions() int64 {
	return global.viper.GetInt64(keyVoteQuestions)
}

// DazeSchedule is the cron schedule on which unsolved puzzles past their
// dazed_on date are dazed.
func DazeSchedule() string {
	return global.viper.GetString(keyDazeSchedule)
}
